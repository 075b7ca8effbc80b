package main

import (
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_reporting_api/internal/auth"
	"github.com/shenikar/incident_reporting_api/internal/config"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/notifier"
	"github.com/shenikar/incident_reporting_api/internal/repository"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/shenikar/incident_reporting_api/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// loadConfig читает конфигурацию и создает логгер, пишущий в out
func loadConfig(out io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.NewWithOutput(out, cfg.LogLevel, cfg.LogFormat), nil
}

// newSenders включает только те каналы, для которых задана конфигурация
func newSenders(cfg *config.Config, log *logrus.Logger) map[models.Channel]service.Sender {
	senders := make(map[models.Channel]service.Sender)
	if cfg.Mailjet.Enabled() {
		senders[models.ChannelEmail] = notifier.NewMailjetSender(cfg.Mailjet, cfg.NotifyTimeout)
	} else {
		log.Warn("Mailjet is not configured, email notifications will be recorded as failed")
	}
	if cfg.SMSGatewayURL != "" {
		senders[models.ChannelSMS] = notifier.NewSMSGatewaySender(cfg.SMSGatewayURL, cfg.SMSGatewayKey, cfg.NotifyTimeout)
	} else {
		log.Warn("SMS gateway is not configured, SMS notifications will be recorded as failed")
	}
	return senders
}

// newUserStack собирает хранилище идентичностей и диспетчер уведомлений
func newUserStack(cfg *config.Config, db *pgxpool.Pool, log *logrus.Logger) (service.UserService, *service.NotificationDispatcher, service.UserRepository) {
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := service.NewNotificationDispatcher(notificationRepo, newSenders(cfg, log), cfg.NotifyTimeout, log)

	users := service.NewUserService(
		userRepo,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTCodec(cfg.JWTSecret),
		dispatcher,
		cfg.TokenTTL,
		log,
	)
	return users, dispatcher, userRepo
}

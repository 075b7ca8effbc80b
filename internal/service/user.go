package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=user.go -destination=mocks/mock_user.go -package=mocks

const tokenType = "Bearer"

// UserService определяет контракт хранилища идентичностей
type UserService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.Credential, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

type userService struct {
	repo     UserRepository
	hasher   PasswordHasher
	tokens   TokenCodec
	notifier Notifier
	tokenTTL time.Duration
	logger   *logrus.Logger
}

func NewUserService(repo UserRepository, hasher PasswordHasher, tokens TokenCodec, notifier Notifier, tokenTTL time.Duration, logger *logrus.Logger) UserService {
	return &userService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register создает пользователя без прав администратора и отправляет приветствие
func (s *userService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "Register",
		"username": input.Username,
	})
	log.Info("Attempting to register a new user")

	if err := validateRegistration(input); err != nil {
		log.WithError(err).Warn("Registration input rejected")
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		log.WithError(err).Error("Failed to check email uniqueness")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	exists, err = s.repo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		log.WithError(err).Error("Failed to check username uniqueness")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, fmt.Errorf("service: could not hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
		Phone:        input.Phone,
		IsAdmin:      false,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// гонка двух регистраций ловится уникальным индексом
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUsername) {
			return nil, err
		}
		log.WithError(err).Error("Failed to create user in repository")
		return nil, fmt.Errorf("service: could not create user: %w", err)
	}
	log.WithField("user_id", user.ID).Info("User registered successfully")

	s.notifier.Notify(ctx, models.NotifyRequest{
		Recipient: user,
		Channel:   models.ChannelEmail,
		Subject:   "Welcome to Ajali!",
		Message:   fmt.Sprintf("Hello %s, welcome to Ajali, your safety partner.", user.Username),
	})
	return user, nil
}

// Authenticate проверяет пароль и выдает токен.
// Для неизвестного email и неверного пароля возвращается одна и та же ошибка.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.Credential, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Authenticate",
	})

	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("Login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.WithError(err).Error("Failed to load user by email")
		return nil, fmt.Errorf("service: could not authenticate: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.WithField("user_id", user.ID).Warn("Login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return nil, fmt.Errorf("service: could not issue token: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User authenticated")
	return &models.Credential{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

// Resolve превращает bearer-токен в пользователя
func (s *userService) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service: could not resolve user: %w", err)
	}
	return user, nil
}

// SetAdmin выдает или отзывает права администратора
func (s *userService) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "SetAdmin",
		"is_admin": isAdmin,
	})

	if err := s.repo.SetAdmin(ctx, strings.TrimSpace(email), isAdmin); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		log.WithError(err).Error("Failed to update admin flag")
		return fmt.Errorf("service: could not update admin flag: %w", err)
	}
	log.Info("Admin flag updated")
	return nil
}

func validateRegistration(input models.RegisterInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Username) == "" {
		verr.Add("username", "is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		verr.Add("email", "is required")
	}
	if input.Password == "" {
		verr.Add("password", "is required")
	}
	return verr.OrNil()
}

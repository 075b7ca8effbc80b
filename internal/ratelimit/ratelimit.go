package ratelimit

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "ratelimit:auth"

// NewAuthLimiter ограничивает частоту запросов к register и login по IP клиента.
// rate задается в формате limiter, например "20-M".
func NewAuthLimiter(client *redis.Client, rate string, log *logrus.Logger) (gin.HandlerFunc, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   keyPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: create redis store: %w", err)
	}
	return newMiddleware(store, rate, log)
}

func newMiddleware(store limiter.Store, rate string, log *logrus.Logger) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", rate, err)
	}

	middleware := mgin.NewMiddleware(
		limiter.New(store, parsed),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.WithFields(logrus.Fields{"service": "ratelimit", "ip": c.ClientIP(), "path": c.FullPath()}).
				Warn("Auth rate limit reached")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, try again later"})
		}),
		// Недоступность хранилища счетчиков не должна блокировать вход
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			log.WithError(err).WithField("service", "ratelimit").Error("Rate limiter store failed")
			c.Next()
		}),
	)
	return middleware, nil
}

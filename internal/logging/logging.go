package logging

import (
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Log is the process-wide logger.
var Log = logrus.New()

// Setup applies the configured level and switches to JSON output.
func Setup(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.WithField("level", level).Warn("unknown log level, falling back to info")
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
}

// WithField is a shortcut for Log.WithField.
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

// RequestLogger writes one line per handled request.
func RequestLogger(userKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.Status(err)
		}

		entry := Log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
		})
		if user, ok := c.Locals(userKey).(string); ok && user != "" {
			entry = entry.WithField("user", user)
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request handled")
		}
		return err
	}
}

// GormLogger routes GORM's slow query and error output through logrus.
func GormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(Log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

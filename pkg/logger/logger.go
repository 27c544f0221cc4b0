package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with request and domain helpers
type Logger struct {
	*zap.Logger
}

// New creates a logger for the given level. Gin debug mode gets a console encoder.
func New(level string) (*Logger, error) {
	var cfg zap.Config
	if gin.Mode() == gin.DebugMode {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(getLogLevel(level))

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l}, nil
}

// Wrap adapts an existing zap logger, mainly for tests.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{Logger: l}
}

// getLogLevel converts string to a zap level
func getLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("request_id", requestID))}
}

// WithOrganization adds the tenant to logger context
func (l *Logger) WithOrganization(orgID string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("organization_id", orgID))}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("duration", duration),
		zap.String("ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("size", c.Writer.Size()),
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("errors", c.Errors.String()))
	}

	switch status := c.Writer.Status(); {
	case status >= 500:
		l.Logger.Error("HTTP Request", fields...)
	case status >= 400:
		l.Logger.Warn("HTTP Request", fields...)
	default:
		l.Logger.Info("HTTP Request", fields...)
	}
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ip, endpoint string) {
	l.Logger.Warn("Rate Limit Exceeded",
		zap.String("ip", ip),
		zap.String("endpoint", endpoint),
	)
}

var defaultLogger = newDefault()

func newDefault() *Logger {
	l, err := New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Wrap(zap.NewNop())
	}
	return l
}

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

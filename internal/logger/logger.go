package logger

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"subhub/internal/config"
)

type ctxKey string

const (
	TraceIDKey ctxKey = "trace_id"
	UserIDKey  ctxKey = "user_id"
)

// Logger wraps zap.SugaredLogger so it can be injected and enriched per request.
type Logger struct {
	*zap.SugaredLogger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zl, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	fields := make([]interface{}, 0, 4)
	if v, ok := ctx.Value(TraceIDKey).(string); ok && v != "" {
		fields = append(fields, "trace_id", v)
	}
	if v, ok := ctx.Value(UserIDKey).(string); ok && v != "" {
		fields = append(fields, "user_id", v)
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

// GinContextKey holds the request logger installed by the access log middleware.
const GinContextKey = "logger"

// FromGin returns the logger attached to c, or the process logger when none is,
// enriched with the request's trace and user ids.
func FromGin(c *gin.Context) *Logger {
	v, _ := c.Get(GinContextKey)
	l, ok := v.(*Logger)
	if !ok || l == nil {
		l = &Logger{SugaredLogger: zap.S()}
	}
	if c.Request == nil {
		return l
	}
	return l.WithContext(c.Request.Context())
}

// ginLogger adapts Logger to gin's io.Writer based default writer.
type ginLogger struct {
	logger *Logger
}

func (l *Logger) GetGinLogger() *ginLogger {
	return &ginLogger{logger: l}
}

func (g *ginLogger) Write(p []byte) (n int, err error) {
	g.logger.Info(string(p))
	return len(p), nil
}

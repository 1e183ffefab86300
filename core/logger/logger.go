package logger

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RayIDKey is the field name, and fiber locals key, carrying the request ray id.
const RayIDKey = "ray_id"

// New builds a zap logger. Debug uses the development preset, every other
// level the production preset at that level.
func New(cfg *Config) (*zap.Logger, error) {
	zc, err := preset(cfg.Level)
	if err != nil {
		return nil, err
	}

	switch cfg.Format {
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	case "", "json":
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"
	return zc.Build()
}

// CLI returns the console logger commands use to report a failed run.
func CLI() (*zap.Logger, error) {
	return New(&Config{Level: "debug", Format: "console"})
}

func preset(level string) (zap.Config, error) {
	if level == "debug" {
		return zap.NewDevelopmentConfig(), nil
	}
	zc := zap.NewProductionConfig()
	if level == "" {
		return zc, nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.Config{}, err
	}
	zc.Level = lvl
	return zc, nil
}

// WithRayID tags l with the ray id stored on c, if any.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if id, ok := c.Locals(RayIDKey).(string); ok && id != "" {
		return l.With(zap.String(RayIDKey, id))
	}
	return l
}

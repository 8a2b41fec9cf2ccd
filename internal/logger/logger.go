package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console
	OutputPath string // stdout when empty
	Service    string // added to every entry when set
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

func newEncoder(encoding string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if strings.EqualFold(encoding, "console") {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

// New builds a zap.Logger from cfg. Unknown levels fall back to info,
// unknown encodings to json.
func New(cfg Config) (*zap.Logger, error) {
	path := cfg.OutputPath
	if path == "" {
		path = "stdout"
	}
	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", path, err)
	}
	errSink, _, err := zap.Open("stderr")
	if err != nil {
		return nil, fmt.Errorf("failed to open error output: %w", err)
	}

	core := zapcore.NewCore(newEncoder(cfg.Encoding), sink, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	opts := []zap.Option{zap.ErrorOutput(errSink)}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(core, opts...), nil
}

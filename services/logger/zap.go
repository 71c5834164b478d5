package logsvc

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/foyer/core"
)

// NewZapLogger builds the local logger: JSON on stdout by default, a colourless console
// encoder when conf.Log.Format is "console".
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(conf.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if conf.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.OutputPaths = []string{"stdout"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	zl, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zl = zl.With(zap.String("service_name", conf.AppName), zap.String("env", conf.Env))
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		zl = zl.With(zap.String("hostname", hostname))
	}
	return zl, nil
}

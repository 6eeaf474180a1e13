package biobdriver

import (
	"os"

	"go-biobase-guidance-driver/guidance"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
)

var (
	LOG_LEVEL     = INFO_LEVEL // default log level
	DEBUG_LEVEL   = zapcore.DebugLevel
	INFO_LEVEL    = zapcore.InfoLevel
	WARNING_LEVEL = zapcore.WarnLevel
	ERROR_LEVEL   = zapcore.ErrorLevel
)

func init() {
	var unknown string
	if logLevelStr := os.Getenv("LOG_LEVEL"); logLevelStr != "" {
		switch logLevelStr {
		case "DEBUG":
			LOG_LEVEL = DEBUG_LEVEL
		case "INFO":
			LOG_LEVEL = INFO_LEVEL
		case "WARNING":
			LOG_LEVEL = WARNING_LEVEL
		case "ERROR":
			LOG_LEVEL = ERROR_LEVEL
		default:
			unknown = logLevelStr
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(LOG_LEVEL)

	var err error
	Logger, err = cfg.Build()
	if err != nil {
		Logger = zap.NewExample()
	}
	Sugar = Logger.Sugar()
	guidance.SetLogger(Logger.Named("guidance"))

	if unknown != "" {
		Sugar.Warnf("Unrecognized LOG_LEVEL env variable value: %s. Keeping LOG_LEVEL at level INFO", unknown)
	}
}

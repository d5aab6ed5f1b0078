package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. Development gets the human-readable
// console encoder, everything else the production JSON encoder.
func New(env string) *zap.Logger {
	var logger *zap.Logger
	var err error

	if env == "development" || env == "test" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

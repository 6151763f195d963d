package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a named zap logger for the app environment: development
// gets console encoding, everything else JSON at info level.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}

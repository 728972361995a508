// Package logging constructs the zap loggers shared by the coordinator and
// storage-node processes.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development logger with caller
// info and debug level when verbose is set.
func New(component string, verbose bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("component", component)), nil
}

package logging

import "go.uber.org/zap"

// New creates a new zap logger. Callers that exit abruptly should call Sync
// on it before doing so.
func New() *zap.SugaredLogger {
	logger, _ := zap.NewProduction()
	return logger.Sugar()
}

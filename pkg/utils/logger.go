package utils

import "go.uber.org/zap"

// NewLogger returns the process-wide zap logger: human-readable development
// output at debug level when debug is set, JSON production output at info
// level otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

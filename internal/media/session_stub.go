//go:build !linux

package media

import (
	"errors"

	"go.uber.org/zap"
)

// NewSession creates a new platform-specific media session
// This is the fallback for platforms without MPRIS
func NewSession(logger *zap.Logger) (Session, error) {
	return nil, errors.New("media session not supported on this platform")
}

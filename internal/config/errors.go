package config

import (
	"errors"
	"fmt"

	"github.com/okian/matchsim/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
// ErrInvalidConfig also matches model.ErrConfiguration.
var (
	ErrInvalidConfig = fmt.Errorf("invalid config: %w", model.ErrConfiguration)
	ErrLoadConfig    = errors.New("load config failed")
)

package cli

import (
	"github.com/yogeswararao/trail-explorer/internal/config"
)

// Function variables for dependency injection in tests.
// Default values are the real implementations; tests may temporarily swap them.
var (
	configLoad         = config.Load
	configWriteDefault = config.WriteDefault
)

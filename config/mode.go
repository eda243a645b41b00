package config

import (
	"os"
	"strings"
)

// ModeEnvKey selects the overlay files loaded after the base file.
const ModeEnvKey = "GO_ENV_MODE"

// Mode is the deployment mode used to pick overlay files.
type Mode string

const (
	DevMode  Mode = "development"
	ProMode  Mode = "production"
	TestMode Mode = "test"
)

// ParseMode normalizes aliases such as "dev" or "prod". Unknown values
// fall back to DevMode.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// CurrentMode reads ModeEnvKey.
func CurrentMode() Mode {
	return ParseMode(os.Getenv(ModeEnvKey))
}

// aliases lists the file suffixes accepted for m, canonical name first.
func (m Mode) aliases() []string {
	switch m {
	case ProMode:
		return []string{"production", "prod", "pro"}
	case TestMode:
		return []string{"test"}
	default:
		return []string{"development", "dev"}
	}
}

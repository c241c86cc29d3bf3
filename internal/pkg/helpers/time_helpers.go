package helpers

import (
	"strings"
	"time"

	"github.com/yigit/edutech/internal/pkg/logger"
)

// ParseDuration parses a duration string such as "24h". Empty, malformed
// and non-positive values fall back to defaultDuration.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return defaultDuration
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).
			Msg("Invalid duration, using default")
		return defaultDuration
	}
	return duration
}

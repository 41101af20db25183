// internal/workers/recommendation/review-summary-invalidate/config.go
package reviewsummaryinvalidate

import (
	"time"

	"moodbrew/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout}
}

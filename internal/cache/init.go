package cache

import (
	"github.com/tutorpilot/tutorpilot/internal/config"
	"github.com/tutorpilot/tutorpilot/internal/logger"
)

// Initialize initializes the cache system
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	InitializeInMemoryCache()
	log.Infow("cache system initialized", "balance_expiry", cfg.Cache.BalanceExpiry)
	return GetInMemoryCache()
}

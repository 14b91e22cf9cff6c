package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/search"
	"github.com/paon-social/searchd/internal/store/postgres"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	RedisClient   *redis.Client    // Redis client connection
	Store         *postgres.Store  // Source-of-truth database
	SearchService *search.Service  // Status search orchestration
	IndexTrigger  chan struct{}    // Channel to trigger a manual queue drain
}

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "agendo"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Brazil dropped daylight saving in 2019; the offset is a plain constant.
	DefaultUTCOffset = "-03:00"

	DefaultExternalFetchTimeout = 5 * time.Second
	DefaultFreeBusyEndpoint     = "https://www.googleapis.com/calendar/v3/freeBusy"

	DefaultSlotLockTTL   = 10 * time.Second
	DefaultHoldTTL       = 30 * time.Minute
	DefaultSweepInterval = 1 * time.Minute
)

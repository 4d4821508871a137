package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	// MasteryCandidateLimit bounds how many games a classifier pass
	// inspects; a full-library scan would blow the upstream rate limit.
	MasteryCandidateLimit = 20
	MaxConcurrentResolves = 5
	MasteryBackoffBase    = 1 * time.Second
	MasteryMaxRetries     = 3
)

const (
	FacetScanLimit   = 50
	FacetBatchSize   = 5
	FacetBatchDelay  = 500 * time.Millisecond
	FacetScanTimeout = 5 * time.Minute
)

const (
	FriendSummaryLimit    = 100
	SearchSuggestionLimit = 10
	AchievementCacheSize  = 128
)

const (
	AssistantPollInterval = 15 * time.Second
	AssistantTimeout      = 120 * time.Second
)

const (
	DBMaxOpenConns = 4
	DBMaxIdleConns = 2
)

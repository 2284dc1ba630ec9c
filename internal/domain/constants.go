package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultProbeTimeout bounds each context sub-probe (git, tools)
	DefaultProbeTimeout = 2 * time.Second
	// DefaultAITimeout bounds a single AI requester call
	DefaultAITimeout = 30 * time.Second
	// DefaultHTTPClientTimeout is the outer timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Limit constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
	// DefaultCacheTTL is how long cached AI responses stay valid
	DefaultCacheTTL = time.Hour
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
)

// DefaultAIConfidence is the confidence attached to AI-proposed candidates.
// Providers do not report calibrated confidence, so a fixed score is used
// and AI candidates outrank pattern candidates by source, not by score.
const DefaultAIConfidence = 0.75

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HistoryRecord captures executed or generated command metadata.
type HistoryRecord struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Prompt     string          `json:"prompt"`
	Command    string          `json:"command"`
	Source     CandidateSource `json:"source"`
	RiskLevel  SafetyLevel     `json:"risk_level"`
	Executed   bool            `json:"executed"`
	Success    bool            `json:"success"`
	ExitCode   int             `json:"exit_code"`
	DurationMS int64           `json:"duration_ms"`
}

// CacheEntry stores cached AI responses.
type CacheEntry struct {
	Key         string    `json:"key"`
	Command     string    `json:"command"`
	Explanation string    `json:"explanation"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// CacheKey derives a stable cache key from a prompt and the OS family it
// was asked under. The same request on a different platform may yield a
// different command, so the family is part of the key.
func CacheKey(prompt string, family OSFamily) string {
	sum := sha256.Sum256([]byte(string(family) + "\x00" + prompt))
	return hex.EncodeToString(sum[:16])
}

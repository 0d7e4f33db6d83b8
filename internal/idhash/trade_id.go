// Package idhash produces deterministic identifiers for trade records.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(symbol|entry_date|exit_date) over RFC3339 dates.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(symbol string, entryDate, exitDate time.Time) string {
	data := fmt.Sprintf("%s|%s|%s",
		symbol,
		entryDate.UTC().Format(time.RFC3339),
		exitDate.UTC().Format(time.RFC3339),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentFilterHash computes the canonical hash of a content filter.
// encoding/json serializes map keys in sorted order at every nesting
// level, so two filters that differ only in key order hash identically.
func ContentFilterHash(contentFilter map[string]any) string {
	serialized, err := json.Marshal(contentFilter)
	if err != nil {
		// A content filter is built from decoded JSON, so it is always
		// marshalable; an empty hash would break the natural key.
		panic("content filter is not serializable: " + err.Error())
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

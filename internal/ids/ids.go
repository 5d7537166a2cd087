// Package ids implements the store's content-addressed identifier scheme:
// a fixed-prefix hash of a row's natural key, sized against the birthday
// paradox, plus the shard-key derivation used to spread rows across files.
//
// Every other package that needs an id or a shard name goes through here;
// there is no other place in the module that calls sha256 or truncates an
// id for sharding purposes.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
)

// minIDLength is the floor imposed on every generated id length, regardless
// of how small the declared expected capacity is.
const minIDLength = 4

// HashID returns the lowercase hex SHA-256 digest of key, truncated to
// length characters. It is pure and deterministic: the same (key, length)
// pair always yields the same id.
func HashID(key string, length int) string {
	sum := sha256.Sum256([]byte(key))
	full := hex.EncodeToString(sum[:])
	if length < 0 {
		length = 0
	}
	if length > len(full) {
		length = len(full)
	}
	return full[:length]
}

// IDLengthForCapacity returns the id length, in hex digits, that keeps the
// birthday-collision probability under roughly 1/500 at an expected load of
// capacity rows. It is non-decreasing in capacity and never returns less
// than minIDLength.
//
// The formula solves for L such that 16^L ~= 500 * capacity^2, i.e.
// L = ceil(ln(500*capacity^2) / ln(16)).
func IDLengthForCapacity(capacity int) int {
	if capacity <= 1 {
		return minIDLength
	}
	n := 500.0 * float64(capacity) * float64(capacity)
	length := int(math.Ceil(math.Log(n) / math.Log(16)))
	if length < minIDLength {
		return minIDLength
	}
	return length
}

// ShardKey returns the first min(shardChars, len(id)) characters of id.
// shardChars == 0 means every row shares a single shard (the empty shard
// key); larger values partition rows into up to 16^shardChars shards.
func ShardKey(id string, shardChars int) string {
	if shardChars <= 0 {
		return ""
	}
	if shardChars > len(id) {
		return id
	}
	return id[:shardChars]
}

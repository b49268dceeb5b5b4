package util

// NormalizeShardCount turns a requested concurrency level into a usable
// shard count: power of two, clamped to [1..256]. Values <= 0 fall back to
// the given default (itself rounded the same way).
//
// The 256 cap keeps per-shard fixed overhead (map headers, latches) small
// even when callers pass an over-eager concurrency level.
func NormalizeShardCount(requested, def int) int {
	n := requested
	if n <= 0 {
		n = def
	}
	if n < 1 {
		n = 1
	}
	p := int(NextPow2(uint64(n)))
	if p > 256 {
		p = 256
	}
	return p
}

// ShardIndex maps a 64-bit hash to a shard index.
// Shard counts produced by NormalizeShardCount are powers of two, so the
// mask path is the one taken in practice; the modulo path keeps the helper
// correct for arbitrary counts.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

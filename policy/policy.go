// Package policy defines the eviction-policy contract used by the cache
// engine. A policy tracks key ordering/frequency metadata and proposes one
// eviction candidate at a time; the store owns the entries and performs the
// actual deletions.
package policy

// Access carries the entry metadata a policy may need when a key is touched.
// KeyHash is the same 64-bit hash the store uses for shard routing, so
// sketch-based policies never re-hash keys.
type Access struct {
	KeyHash    uint64
	Weight     int64
	AccessedAt int64 // UnixNano of this access
}

// Policy is an eviction strategy over keys of type K.
//
// Implementations are internally synchronized: every method may be called
// concurrently, including from under a shard latch. A policy must therefore
// never call back into the store.
//
// Contract:
//   - After Touch(k, …), k is a member of the policy's tracking set.
//   - After Remove(k), it is not.
//   - SelectVictim returns one candidate for eviction, or false when the
//     tracking set is empty. Policies that honor the forbidden hint never
//     return that key, and also return false when it is the only tracked
//     key (FIFO/FILO ignore the hint: insertion order alone decides;
//     Window-TinyLFU ignores it too: its admission contest decides).
//   - Clear empties all tracking state.
type Policy[K comparable] interface {
	// Touch records an access (read or write) to k.
	Touch(k K, a Access)
	// Remove forgets k (explicit removal or completed eviction).
	Remove(k K)
	// Clear drops all tracking state.
	Clear()
	// SelectVictim proposes one key for eviction. The forbidden hint, when
	// non-nil, names a key the caller does not want back (typically the key
	// whose insert triggered the overflow).
	SelectVictim(forbidden *K) (K, bool)
}

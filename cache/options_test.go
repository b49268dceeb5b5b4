package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full rejection matrix for builder validation.
func TestOptions_Validation(t *testing.T) {
	t.Parallel()

	weigher := func(string, int) int64 { return 1 }
	loader := func(context.Context, string) (int, error) { return 0, nil }
	asyncLoader := func(context.Context, string) <-chan LoadResult[int] {
		ch := make(chan LoadResult[int], 1)
		ch <- LoadResult[int]{}
		return ch
	}

	cases := []struct {
		name     string
		opt      Options[string, int]
		wantCode string
	}{
		{
			name:     "negative maximum size",
			opt:      Options[string, int]{MaximumSize: -1},
			wantCode: "STRATA_INVALID_MAX_SIZE",
		},
		{
			name:     "negative maximum weight",
			opt:      Options[string, int]{MaximumWeight: -5, Weigher: weigher},
			wantCode: "STRATA_INVALID_MAX_WEIGHT",
		},
		{
			name:     "weight bound without weigher",
			opt:      Options[string, int]{MaximumWeight: 10},
			wantCode: "STRATA_WEIGHER_REQUIRED",
		},
		{
			name:     "size and weight together",
			opt:      Options[string, int]{MaximumSize: 10, MaximumWeight: 10, Weigher: weigher},
			wantCode: "STRATA_CONFLICTING_BOUNDS",
		},
		{
			name:     "weak and soft values together",
			opt:      Options[string, int]{WeakValues: true, SoftValues: true},
			wantCode: "STRATA_CONFLICTING_REF_MODES",
		},
		{
			name:     "sync and async loaders together",
			opt:      Options[string, int]{Loader: loader, AsyncLoader: asyncLoader},
			wantCode: "STRATA_CONFLICTING_LOADERS",
		},
		{
			name:     "negative duration",
			opt:      Options[string, int]{ExpireAfterWrite: -time.Second},
			wantCode: "STRATA_NEGATIVE_DURATION",
		},
		{
			name:     "unknown policy",
			opt:      Options[string, int]{Policy: "CLOCK_PRO"},
			wantCode: "STRATA_UNKNOWN_POLICY",
		},
		{
			name:     "idle policy without max idle time",
			opt:      Options[string, int]{Policy: PolicyIdleTime},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
		{
			name:     "max idle time with incompatible policy",
			opt:      Options[string, int]{Policy: PolicyLRU, MaxIdleTime: time.Minute},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
		{
			name:     "weight policy without weigher",
			opt:      Options[string, int]{Policy: PolicyWeight},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
		{
			name:     "composite without members",
			opt:      Options[string, int]{Policy: PolicyComposite},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
		{
			name: "nested composite",
			opt: Options[string, int]{
				Policy:            PolicyComposite,
				CompositePolicies: []PolicyKind{PolicyComposite},
			},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
		{
			name: "composite members on a non-composite policy",
			opt: Options[string, int]{
				Policy:            PolicyLRU,
				CompositePolicies: []PolicyKind{PolicyFIFO},
			},
			wantCode: "STRATA_POLICY_MISMATCH",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New[string, int](tc.opt)
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "expected a config error, got %v", err)
			assert.Equal(t, tc.wantCode, string(code(err)))
		})
	}
}

// Valid configurations construct, including the zero value.
func TestOptions_ValidConfigurations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opt  Options[string, int]
	}{
		{"zero value", Options[string, int]{}},
		{"size bounded default policy", Options[string, int]{MaximumSize: 100}},
		{
			"weight bounded",
			Options[string, int]{
				MaximumWeight: 100,
				Weigher:       func(string, int) int64 { return 1 },
			},
		},
		{
			"idle policy",
			Options[string, int]{Policy: PolicyIdleTime, MaxIdleTime: time.Minute},
		},
		{
			"composite of idle and lru",
			Options[string, int]{
				MaximumSize:       10,
				Policy:            PolicyComposite,
				CompositePolicies: []PolicyKind{PolicyIdleTime, PolicyLRU},
				MaxIdleTime:       time.Minute,
			},
		},
		{
			"basic sketch tinylfu",
			Options[string, int]{MaximumSize: 100, SketchMode: SketchBasic},
		},
		{
			"sketchless tinylfu",
			Options[string, int]{MaximumSize: 100, SketchMode: SketchNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := New[string, int](tc.opt)
			require.NoError(t, err)
			require.NotNil(t, c)
			c.Put("a", 1)
			v, ok := c.Get("a")
			assert.True(t, ok)
			assert.Equal(t, 1, v)
			assert.NoError(t, c.Close())
		})
	}
}

// Each policy that needs no extra settings (LRU, LFU, FIFO, FILO,
// Window-TinyLFU) constructs and evicts under its bound.
func TestOptions_AllPoliciesBound(t *testing.T) {
	t.Parallel()

	for _, kind := range []PolicyKind{
		PolicyLRU, PolicyLFU, PolicyFIFO, PolicyFILO, PolicyWindowTinyLFU,
	} {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			c, err := New[int, int](Options[int, int]{MaximumSize: 16, Policy: kind})
			require.NoError(t, err)
			defer func() { _ = c.Close() }()

			for i := 0; i < 200; i++ {
				c.Put(i, i)
				require.LessOrEqual(t, c.Size(), int64(16),
					"bound must hold after every insert")
			}
		})
	}
}

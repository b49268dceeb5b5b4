package cache

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes. Configuration codes surface only from New; loader codes only
// from GetOrLoad and background refreshes.
const (
	ErrCodeInvalidMaxSize     errors.ErrorCode = "STRATA_INVALID_MAX_SIZE"
	ErrCodeInvalidMaxWeight   errors.ErrorCode = "STRATA_INVALID_MAX_WEIGHT"
	ErrCodeWeigherRequired    errors.ErrorCode = "STRATA_WEIGHER_REQUIRED"
	ErrCodeConflictingBounds  errors.ErrorCode = "STRATA_CONFLICTING_BOUNDS"
	ErrCodeConflictingRefs    errors.ErrorCode = "STRATA_CONFLICTING_REF_MODES"
	ErrCodeConflictingLoaders errors.ErrorCode = "STRATA_CONFLICTING_LOADERS"
	ErrCodeNegativeDuration   errors.ErrorCode = "STRATA_NEGATIVE_DURATION"
	ErrCodeUnknownPolicy      errors.ErrorCode = "STRATA_UNKNOWN_POLICY"
	ErrCodeUnknownSketchMode  errors.ErrorCode = "STRATA_UNKNOWN_SKETCH_MODE"
	ErrCodePolicyMismatch     errors.ErrorCode = "STRATA_POLICY_MISMATCH"

	ErrCodeNoLoader        errors.ErrorCode = "STRATA_NO_LOADER"
	ErrCodeLoaderFailed    errors.ErrorCode = "STRATA_LOADER_FAILED"
	ErrCodeLoaderCancelled errors.ErrorCode = "STRATA_LOADER_CANCELLED"
)

func newErrInvalidMaxSize(size int64) error {
	return errors.NewWithField(ErrCodeInvalidMaxSize,
		"maximum size must be positive when set", "maximum_size", size)
}

func newErrInvalidMaxWeight(weight int64) error {
	return errors.NewWithField(ErrCodeInvalidMaxWeight,
		"maximum weight must be positive when set", "maximum_weight", weight)
}

func newErrWeigherRequired() error {
	return errors.NewWithContext(ErrCodeWeigherRequired,
		"maximum weight requires a weigher function", nil)
}

func newErrConflictingBounds() error {
	return errors.NewWithContext(ErrCodeConflictingBounds,
		"maximum size and maximum weight are mutually exclusive", nil)
}

func newErrConflictingRefs() error {
	return errors.NewWithContext(ErrCodeConflictingRefs,
		"weak values and soft values are mutually exclusive", nil)
}

func newErrConflictingLoaders() error {
	return errors.NewWithContext(ErrCodeConflictingLoaders,
		"sync and async loaders are mutually exclusive", nil)
}

func newErrNegativeDuration(option string, v any) error {
	return errors.NewWithContext(ErrCodeNegativeDuration,
		"durations must be non-negative", map[string]interface{}{
			"option": option,
			"value":  v,
		})
}

func newErrUnknownPolicy(name string) error {
	return errors.NewWithField(ErrCodeUnknownPolicy,
		"unknown eviction policy", "policy", name)
}

func newErrUnknownSketchMode(mode string) error {
	return errors.NewWithField(ErrCodeUnknownSketchMode,
		"unknown frequency sketch mode", "mode", mode)
}

func newErrPolicyMismatch(msg string, policy string) error {
	return errors.NewWithField(ErrCodePolicyMismatch, msg, "policy", policy)
}

// ErrNoLoader is returned by GetOrLoad when no loader was configured.
var ErrNoLoader = errors.NewWithContext(ErrCodeNoLoader, "cache: no loader configured", nil)

func newErrLoaderFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeLoaderFailed, "loader failed")
}

func newErrLoaderCancelled(cause error) error {
	if cause == nil {
		return errors.NewWithContext(ErrCodeLoaderCancelled, "load cancelled", nil)
	}
	return errors.Wrap(cause, ErrCodeLoaderCancelled, "load cancelled")
}

// IsConfigError reports whether err is a construction-time rejection.
func IsConfigError(err error) bool {
	switch code(err) {
	case ErrCodeInvalidMaxSize, ErrCodeInvalidMaxWeight, ErrCodeWeigherRequired,
		ErrCodeConflictingBounds, ErrCodeConflictingRefs, ErrCodeConflictingLoaders,
		ErrCodeNegativeDuration, ErrCodeUnknownPolicy, ErrCodeUnknownSketchMode,
		ErrCodePolicyMismatch:
		return true
	}
	return false
}

// IsLoaderError reports whether err came out of a loader invocation
// (failure or cancellation).
func IsLoaderError(err error) bool {
	switch code(err) {
	case ErrCodeLoaderFailed, ErrCodeLoaderCancelled:
		return true
	}
	return false
}

func code(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

package nowcast

import "errors"

// Sentinel errors distinguishing the engine's failure modes. Callers test
// with errors.Is; wrapped messages carry the detail.
var (
	// ErrMotionEstimation marks a single frame pair whose motion could not
	// be estimated (degenerate input, mismatched shapes, non-increasing
	// timestamps). Recoverable: the aggregator skips the pair.
	ErrMotionEstimation = errors.New("motion estimation failed")

	// ErrInsufficientData marks a frame buffer too small to work with, or a
	// window in which every pair failed motion estimation.
	ErrInsufficientData = errors.New("insufficient frame data")

	// ErrAdvection marks a velocity field that cannot be applied (non-finite
	// trajectories, shape mismatch). Fatal: a forecast run aborts on it.
	ErrAdvection = errors.New("advection failed")

	// ErrForecast wraps any of the above at the forecast boundary, so a
	// caller holding only the returned error sees both the umbrella and the
	// originating cause in the chain.
	ErrForecast = errors.New("forecast failed")
)

// Package nowcast implements short-horizon extrapolation forecasting
// ("nowcasting") of radar reflectivity composites.
//
// The engine consumes a chronological buffer of reflectivity frames and
// produces a sequence of forecast frames a few tens of minutes ahead. The
// standard method is advective: estimate cloud motion between recent frame
// pairs with a sparse pyramidal Lucas-Kanade tracker, aggregate the pairwise
// fields into one mean velocity field, then step the latest frame forward by
// repeated semi-Lagrangian advection. Between advection steps an evolution
// model applies simple intensity physics: moderate echoes grow, very intense
// echoes decay, and the whole field fades exponentially toward the horizon.
//
// Two reference methods ship alongside the advective forecaster: a linear
// trend extrapolation of domain-mean reflectivity, and a persistence baseline
// that repeats the latest observation. All three satisfy the Method interface
// so the evaluation harness can score them against held-out frames.
//
// The package is purely computational. It performs no I/O, owns no goroutines
// and never touches the wall clock; timestamps derive from the input frames.
// Callers observe progress through an injected EventSink, and distinguish
// failure modes with errors.Is against the package sentinel errors.
package nowcast

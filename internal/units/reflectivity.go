// Package units converts between the 8-bit codes stored in reflectivity
// composites and physical quantities.
package units

import "math"

// The composite encoding is affine: dBZ = Gain*code + Offset. Code 255 is
// reserved as the no-data marker and never carries reflectivity.
const (
	Gain    = 0.5
	Offset  = -32.0
	MaxCode = 254
)

// Marshall-Palmer Z-R coefficients, Z = a * R^b.
const (
	zrA = 200.0
	zrB = 1.6
)

// CodeToDBZ converts an 8-bit composite code to reflectivity in dBZ.
func CodeToDBZ(code uint8) float64 {
	return Gain*float64(code) + Offset
}

// DBZToCode converts reflectivity to the nearest representable code,
// clamped to [0, MaxCode].
func DBZToCode(dbz float64) uint8 {
	code := math.Round((dbz - Offset) / Gain)
	if code < 0 {
		code = 0
	}
	if code > MaxCode {
		code = MaxCode
	}
	return uint8(code)
}

// RainRate estimates surface rain rate in mm/h from reflectivity using the
// Marshall-Palmer relation Z = 200 R^1.6.
func RainRate(dbz float64) float64 {
	z := math.Pow(10, dbz/10)
	return math.Pow(z/zrA, 1/zrB)
}

// CodeToRainRate is a convenience composition for 8-bit codes.
func CodeToRainRate(code uint8) float64 {
	return RainRate(CodeToDBZ(code))
}

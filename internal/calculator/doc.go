// Package calculator implements signed 32-bit integer addition. The free
// function Add always wraps; Calculator values apply a configurable Policy
// when the sum leaves the int32 range.
package calculator

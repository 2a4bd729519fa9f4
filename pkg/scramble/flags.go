// Package scramble implements the key-driven line scrambling transform
// and its exact inverse. Per line, keystream bytes are turned into a
// segment permutation, per-segment circular shifts, and per-segment
// inversion flags; the forward transform applies permutation, then
// inversion, then shift to the active region only, leaving sync and
// blanking samples bit-identical.
package scramble

import "github.com/ghostlink/ghostlink/pkg/anlg"

// Flags selects which scrambling operations are applied. Disabled
// operations derive identity parameters rather than being skipped, so
// downstream logic stays uniform.
type Flags struct {
	Permutation bool
	Inversion   bool
	Shift       bool
}

// AllEnabled returns the default flag set with every operation on
func AllEnabled() Flags {
	return Flags{Permutation: true, Inversion: true, Shift: true}
}

// Operations converts the flags to their container metadata form
func (f Flags) Operations() *anlg.Operations {
	return &anlg.Operations{
		Permutation: f.Permutation,
		Inversion:   f.Inversion,
		Shift:       f.Shift,
	}
}

// FlagsFromOperations restores flags from container metadata
func FlagsFromOperations(ops *anlg.Operations) Flags {
	if ops == nil {
		return AllEnabled()
	}
	return Flags{
		Permutation: ops.Permutation,
		Inversion:   ops.Inversion,
		Shift:       ops.Shift,
	}
}

// ParameterError reports a segment configuration that cannot partition
// the active line
type ParameterError struct {
	Reason string
}

func (e *ParameterError) Error() string {
	return "invalid scramble parameters: " + e.Reason
}

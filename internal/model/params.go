// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// generation parameters.
package model

import (
	"math"
	"sort"
	"strconv"
)

// =============================================================================
// ERRORS
// =============================================================================

// ParameterError represents a rejected parameter mutation. The prior value
// is always left untouched when one of these is returned.
type ParameterError struct {
	Message string
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing parameter errors.
func (e *ParameterError) Is(target error) bool {
	t, ok := target.(*ParameterError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrUnknownParameter is returned when the name is not in the fixed set.
	ErrUnknownParameter = &ParameterError{Message: "unknown parameter"}

	// ErrInvalidValue is returned when the value does not parse to a finite number.
	ErrInvalidValue = &ParameterError{Message: "invalid parameter value"}
)

// =============================================================================
// PARAMETERS TYPE
// =============================================================================

// The fixed set of generation parameter names. The server interprets them;
// the client only guarantees that each carries a finite numeric value.
const (
	ParamTemperature = "temperature"
	ParamTopP        = "top_p"
	ParamTopK        = "top_k"
	ParamMaxTokens   = "max_tokens"
)

// paramDefaults holds the default value for every parameter in the fixed set.
var paramDefaults = map[string]float64{
	ParamTemperature: 0.7,
	ParamTopP:        0.9,
	ParamTopK:        40,
	ParamMaxTokens:   2000,
}

// Parameters maps each name in the fixed set to a finite numeric value.
// Every key is always present; mutation goes through Set which rejects
// unknown names and non-finite values before touching state.
type Parameters map[string]float64

// DefaultParameters returns a fresh parameter map with default values.
func DefaultParameters() Parameters {
	p := make(Parameters, len(paramDefaults))
	for name, value := range paramDefaults {
		p[name] = value
	}
	return p
}

// IsValidName reports whether name belongs to the fixed parameter set.
func IsValidName(name string) bool {
	_, ok := paramDefaults[name]
	return ok
}

// ParameterNames returns the fixed set of parameter names, sorted.
func ParameterNames() []string {
	names := make([]string, 0, len(paramDefaults))
	for name := range paramDefaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set parses raw and updates the named parameter. Fails with
// ErrUnknownParameter for names outside the fixed set and ErrInvalidValue
// for values that do not parse to a finite number. On failure the prior
// value is untouched.
func (p Parameters) Set(name, raw string) error {
	if !IsValidName(name) {
		return ErrUnknownParameter
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidValue
	}
	p[name] = value
	return nil
}

// Get returns the value for name and whether it is in the fixed set.
func (p Parameters) Get(name string) (float64, bool) {
	value, ok := p[name]
	return value, ok
}

// Merge applies the known keys of other on top of p. Keys of p not present
// in other are retained; unknown keys in other are dropped. This is the
// load semantics: a record saved by an older build never resets parameters
// it did not know about.
func (p Parameters) Merge(other map[string]float64) {
	for name, value := range other {
		if !IsValidName(name) {
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		p[name] = value
	}
}

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	return Parameters(p.Snapshot())
}

// Snapshot returns the parameters as a plain map for serialization and for
// the request options payload. Unknown server-side names are the server's
// problem; the client sends the fixed set verbatim.
func (p Parameters) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(p))
	for name, value := range p {
		out[name] = value
	}
	return out
}

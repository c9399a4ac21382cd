// Package interp implements bintest's "${VAR}" string interpolator.
// Interpolation syntax is fixed and deliberately not text/template's
// "{{ }}" dialect: a literal "${NAME}" substitution with a "$${" escape
// has no direct equivalent in text/template's delimiter model, so this is
// a small hand-rolled scanner rather than a borrowed templating library.
package interp

import (
	"strings"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// Interpolate expands every "${NAME}" in s using env. An unresolved name
// fails with *errors.InterpolationError — bintest never falls back to a
// silent empty substitution. "$${" in the input yields a
// literal "${" in the output without triggering a lookup.
func Interpolate(s string, env map[string]string, where string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "$${") {
			out.WriteString("${")
			i += 3
			continue
		}
		if strings.HasPrefix(s[i:], "${") {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				out.WriteString(s[i:])
				break
			}
			name := s[i+2 : i+2+end]
			val, ok := env[name]
			if !ok {
				return "", &bterrors.InterpolationError{Name: name, Where: where}
			}
			out.WriteString(val)
			i += 2 + end + 1
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String(), nil
}

// InterpolateAll expands each string in ss, returning a new slice; ss
// itself is left unchanged.
// It stops at the first interpolation error.
func InterpolateAll(ss []string, env map[string]string, where string) ([]string, error) {
	out := make([]string, len(ss))
	for i, s := range ss {
		v, err := Interpolate(s, env, where)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Package versions compares Cargo version requirements.
//
// Only the lower bound of a requirement matters: "^1.2", "~1.2.3", ">=1.2, <2"
// and "1.2.*" all normalize to a concrete semver and are compared as such.
// Requirements that cannot be normalized never compare as older, so they are
// never bumped.
package versions

import (
	"strings"

	"golang.org/x/mod/semver"
)

var operators = []string{">=", "<=", "^", "~", "=", ">", "<"}

// Normalize converts a Cargo requirement into a canonical semver string with
// a leading "v". It returns "" when the requirement has no usable version.
func Normalize(req string) string {
	req = strings.TrimSpace(req)
	if req == "" || req == "*" {
		return ""
	}

	// Ranges take their first comparator as the lower bound.
	if i := strings.IndexByte(req, ','); i >= 0 {
		req = strings.TrimSpace(req[:i])
	}

	for _, op := range operators {
		if strings.HasPrefix(req, op) {
			req = strings.TrimSpace(req[len(op):])
			break
		}
	}

	// Wildcards keep the concrete prefix.
	for strings.HasSuffix(req, ".*") || strings.HasSuffix(req, ".x") {
		req = req[:len(req)-2]
	}

	// Build metadata does not affect precedence.
	if i := strings.IndexByte(req, '+'); i >= 0 {
		req = req[:i]
	}

	v := "v" + strings.TrimPrefix(req, "v")
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// Valid reports whether req normalizes to a comparable version
func Valid(req string) bool {
	return Normalize(req) != ""
}

// Compare returns -1, 0 or +1 comparing the lower bounds of a and b. The
// second result is false when either side cannot be normalized.
func Compare(a, b string) (int, bool) {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0, false
	}
	return semver.Compare(na, nb), true
}

// Older reports whether current is strictly older than recommended. Absent or
// unparsable versions on either side are never older.
func Older(current, recommended string) bool {
	c, ok := Compare(current, recommended)
	return ok && c < 0
}

// Max returns the higher of two requirements, keeping the original spelling.
// An unparsable requirement loses to a parsable one. The result does not
// depend on argument order.
func Max(a, b string) string {
	na, nb := Normalize(a), Normalize(b)
	switch {
	case na == "" && nb == "":
		return tieBreak(a, b)
	case na == "":
		return b
	case nb == "":
		return a
	}
	switch semver.Compare(na, nb) {
	case -1:
		return b
	case 1:
		return a
	}
	return tieBreak(a, b)
}

// tieBreak prefers the longer spelling ("1.2.0" over "1.2"), then the
// lexically greater one.
func tieBreak(a, b string) string {
	la, lb := len(strings.TrimSpace(a)), len(strings.TrimSpace(b))
	if lb > la || (lb == la && b > a) {
		return b
	}
	return a
}

// Major returns the major component of a requirement, or "" when unparsable
func Major(req string) string {
	n := Normalize(req)
	if n == "" {
		return ""
	}
	return strings.TrimPrefix(semver.Major(n), "v")
}

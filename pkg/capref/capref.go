// Package capref provides capability reference parsing and version
// constraint matching for swarm capability matching.
package capref

import (
	"fmt"
	"regexp"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

const logPrefix = "capref:parse"

// Ref holds the parsed components of a capability reference string.
type Ref struct {
	// Name is the capability name (e.g., "data-analysis").
	Name string
	// Range is the version constraint if specified (e.g., "^1.2.0", ">=2",
	// ""); empty means any version, including unversioned capabilities.
	Range string
	// Raw is the original input string.
	Raw string
}

var capabilityNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

// Parse parses a capability reference string.
//
// Supported formats:
//   - data-analysis            (no version)
//   - data-analysis@1.2.0      (exact version)
//   - data-analysis@^1.2.0     (caret range)
//   - data-analysis@~1.2.0     (tilde range)
//   - data-analysis@>=1.0.0    (comparison range)
func Parse(input string) (*Ref, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil, fmt.Errorf("%s - empty capability reference", logPrefix)
	}

	name := raw
	rng := ""
	if at := strings.Index(raw, "@"); at >= 0 {
		name = raw[:at]
		rng = raw[at+1:]
		if rng == "" {
			return nil, fmt.Errorf("%s - capability reference %q has empty version range", logPrefix, raw)
		}
	}

	if !capabilityNameRegex.MatchString(name) {
		return nil, fmt.Errorf("%s - invalid capability name %q", logPrefix, name)
	}
	if rng != "" {
		if _, err := masterminds.NewConstraint(rng); err != nil {
			return nil, fmt.Errorf("%s - invalid version range %q: %w", logPrefix, rng, err)
		}
	}

	return &Ref{Name: name, Range: rng, Raw: raw}, nil
}

// Satisfies reports whether an advertised capability satisfies a required
// reference. Names must match exactly. A required range matches only when the
// advertised side carries a version inside that range; an advertised version
// with no required range always matches.
func Satisfies(advertised, required *Ref) bool {
	if advertised.Name != required.Name {
		return false
	}
	if required.Range == "" {
		return true
	}
	if advertised.Range == "" {
		// Unversioned capability cannot satisfy a version constraint.
		return false
	}

	constraint, err := masterminds.NewConstraint(required.Range)
	if err != nil {
		return false
	}
	version, err := masterminds.NewVersion(advertised.Range)
	if err != nil {
		// The advertised side itself carries a range, not a concrete
		// version; overlap checking is not supported.
		return false
	}
	return constraint.Check(version)
}

// MatchSet reports whether every required reference is satisfied by at least
// one advertised capability. Both slices hold raw reference strings; an
// unparsable entry on either side fails the match.
func MatchSet(advertised, required []string) bool {
	advRefs := make([]*Ref, 0, len(advertised))
	for _, a := range advertised {
		ref, err := Parse(a)
		if err != nil {
			return false
		}
		advRefs = append(advRefs, ref)
	}

	for _, r := range required {
		reqRef, err := Parse(r)
		if err != nil {
			return false
		}
		matched := false
		for _, advRef := range advRefs {
			if Satisfies(advRef, reqRef) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

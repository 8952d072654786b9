package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// BumpKind selects which semver component to increment.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

// BumpVersion increments one component of a semver string, zeroing the
// lower components. A leading "v" is preserved.
//
//	BumpVersion("v1.2.3", BumpMajor) == "v2.0.0"
//	BumpVersion("1.2.3", BumpMinor)  == "1.3.0"
func BumpVersion(version string, kind BumpKind) (string, error) {
	if !versionPattern.MatchString(version) {
		return "", fmt.Errorf("%w: invalid version %q", ErrValidation, version)
	}

	prefix := ""
	core := version
	if strings.HasPrefix(core, "v") {
		prefix = "v"
		core = core[1:]
	}

	parts := strings.Split(core, ".")
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	patch, _ := strconv.Atoi(parts[2])

	switch kind {
	case BumpMajor:
		major++
		minor, patch = 0, 0
	case BumpMinor:
		minor++
		patch = 0
	case BumpPatch:
		patch++
	default:
		return "", fmt.Errorf("%w: invalid bump kind %q", ErrValidation, kind)
	}

	return fmt.Sprintf("%s%d.%d.%d", prefix, major, minor, patch), nil
}

package label

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed module version.
type Version struct {
	raw        string
	release    []string
	prerelease []string
}

var versionRegex = regexp.MustCompile(`^v?([0-9A-Za-z]+(?:\.[0-9A-Za-z]+)*)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

// ParseVersion parses s. Build metadata is accepted and ignored for ordering.
func ParseVersion(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	v := Version{raw: s, release: strings.Split(m[1], ".")}
	if m[2] != "" {
		v.prerelease = strings.Split(m[2], ".")
	}
	return v, nil
}

// IsVersion reports whether s parses as a version.
func IsVersion(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

// String returns the version as written.
func (v Version) String() string {
	return v.raw
}

// IsPrerelease reports whether v carries a -prerelease part.
func (v Version) IsPrerelease() bool {
	return len(v.prerelease) > 0
}

// Compare returns -1, 0 or 1 as v is lower than, equal to or higher than
// other. A release sorts above its prereleases.
func (v Version) Compare(other Version) int {
	if c := compareIdentifiers(v.release, other.release); c != 0 {
		return c
	}
	switch {
	case len(v.prerelease) == 0 && len(other.prerelease) == 0:
		return 0
	case len(v.prerelease) == 0:
		return 1
	case len(other.prerelease) == 0:
		return -1
	}
	return compareIdentifiers(v.prerelease, other.prerelease)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// compareIdentifiers orders dot-separated identifiers: numbers numerically
// and below words, words lexically, and a shorter list first on a tie.
func compareIdentifiers(a, b []string) int {
	for i := range min(len(a), len(b)) {
		an, aNum := number(a[i])
		bn, bNum := number(b[i])
		switch {
		case aNum && bNum:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		case aNum:
			return -1
		case bNum:
			return 1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func number(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

// Highest returns the highest of versions that satisfies keep, or "" if
// none does. Unparsable versions are skipped.
func Highest(versions []string, keep func(string) bool) string {
	var best Version
	found := false
	for _, s := range versions {
		if keep != nil && !keep(s) {
			continue
		}
		v, err := ParseVersion(s)
		if err != nil {
			continue
		}
		if !found || best.Less(v) {
			best, found = v, true
		}
	}
	return best.raw
}

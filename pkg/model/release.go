package model

import (
	"strconv"
	"strings"
)

// ReleaseVersion is the manifest returned by the upstream release API for one
// asset/platform combination.
type ReleaseVersion struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	APIURL  string `json:"api_url,omitempty"`
}

// parseSemver splits the version string into a major.minor.patch numeric
// triple. It reports false when the string has fewer than three components or
// any component is not a plain number.
func (v ReleaseVersion) parseSemver() (major, minor, patch int, ok bool) {
	parts := strings.Split(v.Version, ".")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	patch, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, false
	}
	return major, minor, patch, true
}

// Compare orders two release versions. Both sides are parsed as numeric
// major.minor.patch triples; when either side fails to parse the comparison
// falls back to plain string ordering. Returns -1, 0 or 1.
func (v ReleaseVersion) Compare(other ReleaseVersion) int {
	aMaj, aMin, aPat, aOK := v.parseSemver()
	bMaj, bMin, bPat, bOK := other.parseSemver()
	if !aOK || !bOK {
		return strings.Compare(v.Version, other.Version)
	}
	if aMaj != bMaj {
		return compareInt(aMaj, bMaj)
	}
	if aMin != bMin {
		return compareInt(aMin, bMin)
	}
	return compareInt(aPat, bPat)
}

func (v ReleaseVersion) String() string {
	return v.Version
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

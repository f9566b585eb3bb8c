package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Tag is a parsed settings version. Only the leading run of dot-separated
// numeric segments takes part in ordering, so legacy strings such as
// "1.8.0~beta1", "1.9.0beta1" or "2.6.0-beta" compare as their release
// numbers. The raw string is kept for prefix checks.
type Tag struct {
	raw      string
	segments []string
}

// Parse never fails. Strings without a leading number yield the zero Tag,
// which sorts before every real version.
func Parse(s string) Tag {
	s = strings.TrimSpace(s)
	t := Tag{raw: s}
	rest := strings.TrimPrefix(s, "v")
	for rest != "" {
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n == 0 {
			break
		}
		t.segments = append(t.segments, strings.TrimLeft(rest[:n], "0"))
		if last := len(t.segments) - 1; t.segments[last] == "" {
			t.segments[last] = "0"
		}
		rest = rest[n:]
		if !strings.HasPrefix(rest, ".") {
			break
		}
		rest = rest[1:]
	}
	return t
}

// Raw returns the string the tag was parsed from.
func (t Tag) Raw() string { return t.raw }

// IsZero reports whether no numeric version could be read.
func (t Tag) IsZero() bool { return len(t.segments) == 0 }

// HasPrefix reports whether the raw version string starts with any of the prefixes.
func (t Tag) HasPrefix(prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(t.raw, p) {
			return true
		}
	}
	return false
}

// Numeric returns the comparable part, e.g. "1.8.0" for "1.8.0~beta1".
func (t Tag) Numeric() string {
	return strings.Join(t.segments, ".")
}

// canonical renders the tag for x/mod/semver. Segments past the third are
// dropped; semver has no notion of a fourth component.
func (t Tag) canonical() string {
	if t.IsZero() {
		return ""
	}
	segs := t.segments
	if len(segs) > 3 {
		segs = segs[:3]
	}
	return semver.Canonical("v" + strings.Join(segs, "."))
}

// Compare returns -1, 0 or +1. The zero Tag is less than any non-zero Tag.
func (t Tag) Compare(o Tag) int {
	a, b := t.canonical(), o.canonical()
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return semver.Compare(a, b)
}

// Less reports whether t orders before o.
func (t Tag) Less(o Tag) bool { return t.Compare(o) < 0 }

// AtLeast reports whether t orders at or after o.
func (t Tag) AtLeast(o Tag) bool { return t.Compare(o) >= 0 }

// String returns the raw form.
func (t Tag) String() string { return t.raw }

// Current returns the running build's version as a Tag.
func Current() Tag { return Parse(Version) }

package semver

import (
	"fmt"
	"math"
	"strings"
)

// compOp is a requirement comparator operator.
type compOp int

const (
	opCaret    compOp = iota // ^ (also the default when no operator is given)
	opTilde                  // ~
	opExact                  // =
	opGt                     // >
	opGte                    // >=
	opLt                     // <
	opLte                    // <=
	opWildcard               // *
)

func (op compOp) String() string {
	switch op {
	case opCaret:
		return "^"
	case opTilde:
		return "~"
	case opExact:
		return "="
	case opGt:
		return ">"
	case opGte:
		return ">="
	case opLt:
		return "<"
	case opLte:
		return "<="
	case opWildcard:
		return "*"
	}
	return "?"
}

// comparator is one requirement element such as `>=1.2` or `^0.4.1`.
// Minor and patch may be absent.
type comparator struct {
	op       compOp
	major    uint64
	minor    *uint64
	patch    *uint64
	pre      Prerelease
	explicit bool // the operator was written out (affects String only)
}

// VersionReq is a comma-separated intersection of comparators, in the
// style of Cargo requirement strings.
type VersionReq struct {
	comparators []comparator
}

// ParseVersionReq parses a Cargo-style requirement: `^`, `~`, `=`, `>`,
// `>=`, `<`, `<=`, `*`, or a bare version (treated as caret), joined by
// commas.
func ParseVersionReq(s string) (VersionReq, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return VersionReq{}, fmt.Errorf("invalid version requirement: empty string")
	}

	var req VersionReq
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return VersionReq{}, fmt.Errorf(
				"invalid version requirement: empty comparator in `%s`", s)
		}
		c, err := parseComparator(part)
		if err != nil {
			return VersionReq{}, err
		}
		req.comparators = append(req.comparators, c)
	}
	return req, nil
}

func parseComparator(s string) (comparator, error) {
	var c comparator
	switch {
	case s == "*":
		c.op = opWildcard
		return c, nil
	case strings.HasPrefix(s, ">="):
		c.op, c.explicit = opGte, true
		s = s[2:]
	case strings.HasPrefix(s, "<="):
		c.op, c.explicit = opLte, true
		s = s[2:]
	case strings.HasPrefix(s, ">"):
		c.op, c.explicit = opGt, true
		s = s[1:]
	case strings.HasPrefix(s, "<"):
		c.op, c.explicit = opLt, true
		s = s[1:]
	case strings.HasPrefix(s, "="):
		c.op, c.explicit = opExact, true
		s = s[1:]
	case strings.HasPrefix(s, "^"):
		c.op, c.explicit = opCaret, true
		s = s[1:]
	case strings.HasPrefix(s, "~"):
		c.op, c.explicit = opTilde, true
		s = s[1:]
	default:
		c.op = opCaret
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return comparator{}, fmt.Errorf(
			"invalid version requirement: `%s` is missing a version", c.op)
	}
	return parseComparatorVersion(c, s)
}

// parseComparatorVersion reads `major[.minor[.patch[-pre]]]` using the
// semver lexer so numeric validation matches full version parsing.
func parseComparatorVersion(c comparator, s string) (comparator, error) {
	lx := newLexer(s)

	num := func() (uint64, error) {
		if lx.isEOF() || !isDigit(lx.s[lx.pos]) {
			return 0, fmt.Errorf("invalid version requirement: expected number in `%s`", s)
		}
		tok, err := lx.consumeNum()
		if err != nil {
			return 0, err
		}
		return tok.num, nil
	}

	var err error
	if c.major, err = num(); err != nil {
		return comparator{}, err
	}

	for _, part := range []**uint64{&c.minor, &c.patch} {
		tok, err := lx.peek()
		if err != nil {
			return comparator{}, err
		}
		if tok.kind != tokenDot {
			break
		}
		lx.step()
		n, err := num()
		if err != nil {
			return comparator{}, err
		}
		*part = &n
	}

	tok, err := lx.peek()
	if err != nil {
		return comparator{}, err
	}
	if tok.kind == tokenHyphen {
		if c.patch == nil {
			return comparator{}, fmt.Errorf(
				"invalid version requirement: pre-release requires a full version in `%s`", s)
		}
		lx.step()
		p := &parser{lexer: lx}
		if c.pre, err = p.parsePre(); err != nil {
			return comparator{}, err
		}
	}

	if !lx.isEOF() {
		return comparator{}, fmt.Errorf(
			"invalid version requirement: unexpected character `%c` in `%s`",
			lx.s[lx.pos], s)
	}
	return c, nil
}

// Matches reports whether every comparator in the requirement accepts v.
func (r VersionReq) Matches(v Version) bool {
	for _, c := range r.comparators {
		if !c.matches(v) {
			return false
		}
	}
	return true
}

func (c comparator) lowerBound() Version {
	v := Version{Major: c.major, Pre: c.pre}
	if c.minor != nil {
		v.Minor = *c.minor
	}
	if c.patch != nil {
		v.Patch = *c.patch
	}
	return v
}

// upperBound is the exclusive upper bound implied by the comparator, or
// nil when unbounded.
func (c comparator) upperBound() *Version {
	switch c.op {
	case opCaret:
		switch {
		case c.major > 0:
			return &Version{Major: c.major + 1}
		case c.minor == nil:
			return &Version{Major: 1}
		case *c.minor > 0 || c.patch == nil:
			return &Version{Minor: *c.minor + 1}
		default:
			return &Version{Patch: *c.patch + 1}
		}
	case opTilde:
		if c.minor == nil {
			return &Version{Major: c.major + 1}
		}
		return &Version{Major: c.major, Minor: *c.minor + 1}
	case opExact:
		switch {
		case c.minor == nil:
			return &Version{Major: c.major + 1}
		case c.patch == nil:
			return &Version{Major: c.major, Minor: *c.minor + 1}
		default:
			return nil // fully pinned; handled in matches
		}
	}
	return nil
}

func (c comparator) matches(v Version) bool {
	switch c.op {
	case opWildcard:
		return true
	case opGt:
		return c.lowerBound().Less(v)
	case opGte:
		return !v.Less(c.lowerBound())
	case opLt:
		return v.Less(c.lowerBound())
	case opLte:
		return !c.lowerBound().Less(v)
	case opExact:
		if c.patch != nil {
			lo := c.lowerBound()
			return v.Major == lo.Major && v.Minor == lo.Minor &&
				v.Patch == lo.Patch && v.Pre.Compare(lo.Pre) == 0
		}
	}

	// Caret, tilde, and partial exact are half-open intervals.
	lo := c.lowerBound()
	if v.Less(lo) {
		return false
	}
	// A pre-release only matches when the comparator names a pre-release
	// of the same major.minor.patch.
	if !v.Pre.Empty() && (c.pre.Empty() ||
		v.Major != lo.Major || v.Minor != lo.Minor || v.Patch != lo.Patch) {
		return false
	}
	if hi := c.upperBound(); hi != nil && !v.Less(*hi) {
		return false
	}
	return true
}

func (r VersionReq) String() string {
	parts := make([]string, 0, len(r.comparators))
	for _, c := range r.comparators {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

func (c comparator) String() string {
	var sb strings.Builder
	if c.op == opWildcard {
		return "*"
	}
	if c.explicit {
		sb.WriteString(c.op.String())
	}
	sb.WriteString(fmt.Sprintf("%d", c.major))
	if c.minor != nil {
		sb.WriteString(fmt.Sprintf(".%d", *c.minor))
	}
	if c.patch != nil {
		sb.WriteString(fmt.Sprintf(".%d", *c.patch))
	}
	if !c.pre.Empty() {
		sb.WriteString("-" + c.pre.String())
	}
	return sb.String()
}

// ToPkgConfigString renders the requirement in pkg-config's interval
// syntax, e.g. `^1.2` becomes `name >= 1.2.0, name < 2.0.0`.
// Pre-release identifiers are dropped; pkg-config has no notion of
// SemVer pre-release ordering.
func (r VersionReq) ToPkgConfigString(name string) string {
	if len(r.comparators) == 0 {
		return name
	}

	var parts []string
	for _, c := range r.comparators {
		switch c.op {
		case opWildcard:
			parts = append(parts, name)
		case opGt:
			parts = append(parts, fmt.Sprintf("%s > %s", name, pkgConfigVer(c.lowerBound())))
		case opGte:
			parts = append(parts, fmt.Sprintf("%s >= %s", name, pkgConfigVer(c.lowerBound())))
		case opLt:
			parts = append(parts, fmt.Sprintf("%s < %s", name, pkgConfigVer(c.lowerBound())))
		case opLte:
			parts = append(parts, fmt.Sprintf("%s <= %s", name, pkgConfigVer(c.lowerBound())))
		case opExact:
			if c.patch != nil {
				parts = append(parts, fmt.Sprintf("%s = %s", name, pkgConfigVer(c.lowerBound())))
				continue
			}
			fallthrough
		default:
			parts = append(parts, fmt.Sprintf("%s >= %s", name, pkgConfigVer(c.lowerBound())))
			if hi := c.upperBound(); hi != nil && hi.Major != math.MaxUint64 {
				parts = append(parts, fmt.Sprintf("%s < %s", name, pkgConfigVer(*hi)))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func pkgConfigVer(v Version) string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

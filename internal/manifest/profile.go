package manifest

import "fmt"

// Profile is a named bundle of build settings (`dev` or `release`).
type Profile struct {
	Cxxflags []string
	Ldflags  []string
	LTO      bool
	Debug    bool
	CompDb   bool
	OptLevel uint8
}

// String renders the cargo-style summary shown in the Finished line.
func (p Profile) String() string {
	switch {
	case p.Debug && p.OptLevel == 0:
		return "unoptimized + debuginfo"
	case p.Debug:
		return "optimized + debuginfo"
	case p.OptLevel == 0:
		return "unoptimized"
	}
	return "optimized"
}

// rawProfile mirrors one [profile] TOML section. Pointer fields
// distinguish "absent" from zero so base values can propagate.
type rawProfile struct {
	Cxxflags *[]string `toml:"cxxflags"`
	Ldflags  *[]string `toml:"ldflags"`
	LTO      *bool     `toml:"lto"`
	Debug    *bool     `toml:"debug"`
	CompDb   *bool     `toml:"comp-db"`
	OptLevel *uint8    `toml:"opt-level"`
}

type rawProfileTable struct {
	rawProfile
	Dev     rawProfile `toml:"dev"`
	Release rawProfile `toml:"release"`
}

func validateOptLevel(level uint8) error {
	if level > 3 {
		return fmt.Errorf("invalid opt-level: must be between 0 and 3")
	}
	return nil
}

func validateFlag(kind, flag string) error {
	if flag == "" || flag[0] != '-' {
		return fmt.Errorf("invalid %s: `%s` must start with `-`", kind, flag)
	}
	for i := 0; i < len(flag); i++ {
		c := flag[i]
		if isAlnum(c) {
			continue
		}
		switch c {
		case '-', '_', '=', '+', ':', '.':
		default:
			return fmt.Errorf(
				"invalid %s: `%s` must only contain alphanumeric characters, `-`, `_`, `=`, `+`, `:`, or `.`",
				kind, flag)
		}
	}
	return nil
}

func validateFlags(kind string, flags []string) error {
	for _, flag := range flags {
		if err := validateFlag(kind, flag); err != nil {
			return err
		}
	}
	return nil
}

// resolveProfile merges a base section and a per-profile override onto
// the given defaults.
func resolveProfile(base, override rawProfile, defaults Profile) (Profile, error) {
	p := defaults

	pickStrings := func(dst *[]string, vals ...*[]string) {
		for _, v := range vals {
			if v != nil {
				*dst = *v
			}
		}
	}
	pickBool := func(dst *bool, vals ...*bool) {
		for _, v := range vals {
			if v != nil {
				*dst = *v
			}
		}
	}

	pickStrings(&p.Cxxflags, base.Cxxflags, override.Cxxflags)
	pickStrings(&p.Ldflags, base.Ldflags, override.Ldflags)
	pickBool(&p.LTO, base.LTO, override.LTO)
	pickBool(&p.Debug, base.Debug, override.Debug)
	pickBool(&p.CompDb, base.CompDb, override.CompDb)
	for _, v := range []*uint8{base.OptLevel, override.OptLevel} {
		if v != nil {
			p.OptLevel = *v
		}
	}

	if err := validateFlags("cxxflag", p.Cxxflags); err != nil {
		return Profile{}, err
	}
	if err := validateFlags("ldflag", p.Ldflags); err != nil {
		return Profile{}, err
	}
	if err := validateOptLevel(p.OptLevel); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// parseProfiles builds the dev and release profiles from the raw
// table, applying the standard defaults.
func parseProfiles(table rawProfileTable) (map[string]Profile, error) {
	dev, err := resolveProfile(table.rawProfile, table.Dev, Profile{
		Debug:    true,
		OptLevel: 0,
	})
	if err != nil {
		return nil, err
	}
	release, err := resolveProfile(table.rawProfile, table.Release, Profile{
		Debug:    false,
		OptLevel: 3,
	})
	if err != nil {
		return nil, err
	}
	return map[string]Profile{"dev": dev, "release": release}, nil
}

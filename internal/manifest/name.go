package manifest

import (
	"fmt"
	"strings"
)

// cxxKeywords are the identifiers a package may not be named after.
var cxxKeywords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "and_eq": true,
	"asm": true, "atomic_cancel": true, "atomic_commit": true,
	"atomic_noexcept": true, "auto": true, "bitand": true, "bitor": true,
	"bool": true, "break": true, "case": true, "catch": true, "char": true,
	"char8_t": true, "char16_t": true, "char32_t": true, "class": true,
	"compl": true, "concept": true, "const": true, "consteval": true,
	"constexpr": true, "constinit": true, "const_cast": true,
	"continue": true, "co_await": true, "co_return": true, "co_yield": true,
	"decltype": true, "default": true, "delete": true, "do": true,
	"double": true, "dynamic_cast": true, "else": true, "enum": true,
	"explicit": true, "export": true, "extern": true, "false": true,
	"float": true, "for": true, "friend": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "not": true,
	"not_eq": true, "nullptr": true, "operator": true, "or": true,
	"or_eq": true, "private": true, "protected": true, "public": true,
	"reflexpr": true, "register": true, "reinterpret_cast": true,
	"requires": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "static_assert": true,
	"static_cast": true, "struct": true, "switch": true, "synchronized": true,
	"template": true, "this": true, "thread_local": true, "throw": true,
	"true": true, "try": true, "typedef": true, "typeid": true,
	"typename": true, "union": true, "unsigned": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "wchar_t": true,
	"while": true, "xor": true, "xor_eq": true,
}

func isLowerAlpha(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isAlnumLower(c byte) bool { return isLowerAlpha(c) || isDigit(c) }
func isAlnum(c byte) bool {
	return isDigit(c) || isLowerAlpha(c) || (c >= 'A' && c <= 'Z')
}

// ValidatePackageName enforces the package-name grammar. The returned
// error reads as "package name <reason>".
func ValidatePackageName(name string) error {
	fail := func(reason string) error {
		return fmt.Errorf("package name %s", reason)
	}

	if name == "" {
		return fail("must not be empty")
	}
	if len(name) == 1 {
		return fail("must be more than one character")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlnumLower(c) && c != '-' && c != '_' {
			return fail("must only contain lowercase letters, numbers, dashes, and underscores")
		}
	}
	if !isLowerAlpha(name[0]) {
		return fail("must start with a letter")
	}
	if !isAlnumLower(name[len(name)-1]) {
		return fail("must end with a letter or digit")
	}
	if cxxKeywords[name] {
		return fail("must not be a C++ keyword")
	}
	return nil
}

// depNameAllowed are the non-alphanumeric characters a dependency name
// may contain.
func depNameAllowed(c byte) bool {
	switch c {
	case '-', '_', '/', '.', '+':
		return true
	}
	return false
}

// ValidateDepName enforces the dependency-name grammar (which allows
// names like gtkmm-4.0 and ncurses++).
func ValidateDepName(name string) error {
	if name == "" {
		return fmt.Errorf("dependency name is empty")
	}

	if !isAlnum(name[0]) {
		return fmt.Errorf("dependency name must start with an alphanumeric character")
	}
	last := name[len(name)-1]
	if !isAlnum(last) && last != '+' {
		return fmt.Errorf("dependency name must end with an alphanumeric character or `+`")
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlnum(c) && !depNameAllowed(c) {
			return fmt.Errorf("dependency name must be alphanumeric, `-`, `_`, `/`, `.`, or `+`")
		}
	}

	for i := 1; i < len(name); i++ {
		if name[i] == '+' {
			// Consecutive `+` pairs are allowed (ncurses++).
			continue
		}
		if !isAlnum(name[i]) && !isAlnum(name[i-1]) {
			return fmt.Errorf("dependency name must not contain consecutive non-alphanumeric characters")
		}
	}

	for i := 1; i+1 < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		if !isDigit(name[i-1]) || !isDigit(name[i+1]) {
			return fmt.Errorf("dependency name must contain `.` wrapped by digits")
		}
	}

	if strings.Count(name, "/") > 1 {
		return fmt.Errorf("dependency name must not contain more than one `/`")
	}
	switch plusCount := strings.Count(name, "+"); {
	case plusCount != 0 && plusCount != 2:
		return fmt.Errorf("dependency name must contain zero or two `+`")
	case plusCount == 2 && strings.Index(name, "+")+1 != strings.LastIndex(name, "+"):
		return fmt.Errorf("`+` in the dependency name must be consecutive")
	}
	return nil
}

// Package sys provides the pure path helpers shared by every backend.
//
// Nothing in this package touches a filesystem: expansion, absolutization and cleaning are
// purely lexical so they work for paths that do not exist and for in-memory backends alike.
// Paths always use forward slashes.
package sys

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// Separator is the path separator used by every backend.
const Separator = "/"

var (
	// ErrEmpty is returned when an empty path is given.
	ErrEmpty = errors.New("path empty")
	// ErrParentNotFound is returned when a path walks above the root.
	ErrParentNotFound = errors.New("parent not found")
	// ErrInvalidExpansion is returned for a home expansion that is not the leading element.
	ErrInvalidExpansion = errors.New("invalid expansion")
)

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}

// Expand expands a leading ~ to the user's home directory and substitutes $VAR and ${VAR}
// environment references. Undefined variables expand to the empty string.
func Expand(p string) (string, error) {
	if p == "" {
		return "", ErrEmpty
	}

	if strings.HasPrefix(p, "~") {
		if p != "~" && !strings.HasPrefix(p, "~/") {
			return "", fmt.Errorf("%w: %s", ErrInvalidExpansion, p)
		}
		home, err := HomeDir()
		if err != nil {
			return "", err
		}
		p = home + p[1:]
	}

	for _, elem := range strings.Split(p, Separator)[1:] {
		if elem == "~" {
			return "", fmt.Errorf("%w: %s", ErrInvalidExpansion, p)
		}
	}

	return os.ExpandEnv(p), nil
}

// Abs returns p in absolute clean form, resolving relative paths against cwd.
func Abs(p, cwd string) (string, error) {
	expanded, err := Expand(p)
	if err != nil {
		return "", err
	}
	if !IsAbs(expanded) {
		if cwd == "" {
			cwd = Separator
		}
		expanded = cwd + Separator + expanded
	}
	return Clean(expanded)
}

// Clean resolves . and .. elements lexically and removes duplicate separators.
// A .. that would climb above the root of an absolute path is an error.
func Clean(p string) (string, error) {
	if p == "" {
		return "", ErrEmpty
	}

	abs := IsAbs(p)
	parts := make([]string, 0, strings.Count(p, Separator)+1)
	for _, elem := range strings.Split(p, Separator) {
		switch elem {
		case "", ".":
		case "..":
			if len(parts) > 0 && parts[len(parts)-1] != ".." {
				parts = parts[:len(parts)-1]
				continue
			}
			if abs {
				return "", fmt.Errorf("%w: %s", ErrParentNotFound, p)
			}
			parts = append(parts, elem)
		default:
			parts = append(parts, elem)
		}
	}

	out := strings.Join(parts, Separator)
	if abs {
		return Separator + out, nil
	}
	if out == "" {
		return ".", nil
	}
	return out, nil
}

// IsAbs reports whether p is absolute.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, Separator)
}

// Mash joins elem onto dir, treating elem as relative even when it carries a leading
// separator.
func Mash(dir, elem string) string {
	return path.Join(dir, strings.TrimLeft(elem, Separator))
}

// Dir returns all but the last element of p.
func Dir(p string) string {
	return path.Dir(p)
}

// Base returns the last element of p.
func Base(p string) string {
	return path.Base(p)
}

// Components splits an absolute clean path into its elements below the root.
func Components(p string) []string {
	trimmed := strings.Trim(p, Separator)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, Separator)
}

// Relative returns target expressed relative to the directory base. Both paths must be
// absolute and clean.
func Relative(target, base string) string {
	t := Components(target)
	b := Components(base)

	i := 0
	for i < len(t) && i < len(b) && t[i] == b[i] {
		i++
	}

	parts := make([]string, 0, len(b)-i+len(t)-i)
	for range b[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, t[i:]...)

	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, Separator)
}

// HasPrefix reports whether p is dir itself or lies beneath it.
func HasPrefix(p, dir string) bool {
	if p == dir || dir == Separator {
		return true
	}
	return strings.HasPrefix(p, dir+Separator)
}

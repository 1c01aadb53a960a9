package compiledb

import (
	"strings"
)

// DefaultStripFlags are arguments the kernel build emits that the
// clang-family tools cannot consume. They are removed unconditionally,
// whatever the compiler's help output claims.
var DefaultStripFlags = []string{
	"-mrecord-mcount",
	"-fsanitize=bounds-strict",
}

// FlagSet is a set of flag-name strings.
type FlagSet map[string]bool

// NewFlagSet builds a set from the given flags.
func NewFlagSet(flags ...string) FlagSet {
	s := make(FlagSet, len(flags))
	for _, f := range flags {
		s[f] = true
	}
	return s
}

// Contains reports whether flag is in the set.
func (s FlagSet) Contains(flag string) bool {
	return s[flag]
}

// Add inserts flag into the set.
func (s FlagSet) Add(flag string) {
	s[flag] = true
}

// Filter removes unsupported and blocked arguments from compile-command
// records while preserving everything else.
type Filter struct {
	supported FlagSet
	strip     FlagSet
}

// NewFilter builds a filter from the compiler's supported-flag set and
// any extra flags to strip. The strip set is a fresh merge of
// DefaultStripFlags and the extras on every call, so no caller ever
// mutates a shared default.
func NewFilter(supported FlagSet, extraStrip ...string) *Filter {
	strip := NewFlagSet(DefaultStripFlags...)
	for _, f := range extraStrip {
		strip.Add(f)
	}
	return &Filter{
		supported: supported,
		strip:     strip,
	}
}

// Apply returns a new database in which every record's argument list has
// been filtered. Record order and the relative order of retained
// arguments are preserved; the input database is left untouched.
func (f *Filter) Apply(db Database) Database {
	out := make(Database, 0, len(db))
	for _, cmd := range db {
		filtered := cmd
		if len(cmd.Arguments) > 0 {
			args := make([]string, 0, len(cmd.Arguments))
			for _, arg := range cmd.Arguments {
				if f.Keep(arg) {
					args = append(args, arg)
				}
			}
			filtered.Arguments = args
		}
		out = append(out, filtered)
	}
	return out
}

// Keep reports whether a single argument survives filtering: anything in
// the strip set goes; everything that is not flag-like stays; flag-like
// arguments stay when preserved (-I/-D/-U) or when the compiler supports
// their flag name.
func (f *Filter) Keep(arg string) bool {
	if f.isStripped(arg) {
		return false
	}
	if !strings.HasPrefix(arg, "-") {
		return true
	}
	if isPreserved(arg) {
		return true
	}
	return f.supported.Contains(flagName(arg))
}

// flagName returns the name part of a flag argument: everything before
// the first '='.
func flagName(arg string) string {
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return arg[:i]
	}
	return arg
}

// isPreserved reports whether arg is kept regardless of compiler
// support: include paths, defines and undefines.
func isPreserved(arg string) bool {
	return strings.HasPrefix(arg, "-I") ||
		strings.HasPrefix(arg, "-D") ||
		strings.HasPrefix(arg, "-U")
}

// isStripped matches the strip set against the first whitespace-delimited
// token of the argument. Empty arguments are never stripped.
func (f *Filter) isStripped(arg string) bool {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return false
	}
	return f.strip.Contains(fields[0])
}

// Package clang discovers which command-line options a compiler build
// recognizes by parsing its help output.
package clang

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/slaclab/aes-stream-drivers/internal/compiledb"
)

// helpFlagPattern matches option tokens in compiler help output. Options
// are listed indented, one per line, beginning with a dash. The token ends
// at the first character that is not a dash, letter, or digit, so
// "-std=<value>" yields "-std".
var helpFlagPattern = regexp.MustCompile(`(?m)^\s+(-[-A-Za-z0-9]+)`)

// ParseHelpFlags extracts option names from compiler help text.
func ParseHelpFlags(help string) compiledb.FlagSet {
	set := compiledb.NewFlagSet()
	for _, match := range helpFlagPattern.FindAllStringSubmatch(help, -1) {
		set.Add(match[1])
	}
	return set
}

// QuerySupportedFlags invokes the compiler with --help and parses the
// output into the set of options it recognizes. The compiler's stderr is
// ignored; only stdout is parsed.
func QuerySupportedFlags(ctx context.Context, executable string) (compiledb.FlagSet, error) {
	out, err := exec.CommandContext(ctx, executable, "--help").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s for supported flags: %w", executable, err)
	}
	return ParseHelpFlags(string(out)), nil
}

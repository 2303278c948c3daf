package git

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"greptui/internal/domain"
)

// Args returns the git arguments for q as a user would type them:
// line numbers, binary files skipped, one option per active flag, the
// pattern behind -e and pathspecs after --. The extra patterns are joined
// with --and, the excluded one as --and --not since git would otherwise
// combine it with --or.
func Args(q domain.Query) []string {
	args := []string{"grep", "-n", "-I"}
	for _, f := range q.Flags.List() {
		args = append(args, "--"+f.String())
	}
	args = append(args, "-e", q.Pattern)
	if q.AndPattern != "" {
		args = append(args, "--and", "-e", q.AndPattern)
	}
	if q.NotPattern != "" {
		args = append(args, "--and", "--not", "-e", q.NotPattern)
	}
	if len(q.Paths) > 0 {
		args = append(args, "--")
		args = append(args, q.Paths...)
	}
	return args
}

// execArgs adds the options that keep the output machine readable
func execArgs(q domain.Query) []string {
	args := Args(q)
	out := make([]string, 0, len(args)+4)
	out = append(out, "-c", "core.quotePath=false", args[0], "--no-color")
	return append(out, args[1:]...)
}

// CommandLine renders q as a shell command that reproduces the search
func CommandLine(q domain.Query) string {
	args := Args(q)
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, "git")
	for _, a := range args {
		quoted = append(quoted, ShellQuote(a))
	}
	return strings.Join(quoted, " ")
}

// ShellQuote quotes s for a POSIX shell when it contains anything the shell
// would interpret
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&;|*?<>`()[]{}#~!%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

var shortFlags = map[rune]domain.Flag{
	'i': domain.IgnoreCase,
	'F': domain.FixedStrings,
	'w': domain.WordRegexp,
	'v': domain.InvertMatch,
	'E': domain.ExtendedRegexp,
	'P': domain.PerlRegexp,
}

// options that do not change what the query selects
var neutralLong = map[string]bool{
	"--line-number":                true,
	"--no-color":                   true,
	"--binary-files=without-match": true,
}

// ParseCommandLine is the inverse of CommandLine. It accepts short or long
// flag spellings and an optional leading "$ " prompt.
func ParseCommandLine(s string) (domain.Query, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return domain.Query{}, fmt.Errorf("failed to split command line: %w", err)
	}
	if len(words) > 0 && words[0] == "$" {
		words = words[1:]
	}
	if len(words) == 0 || words[0] != "git" {
		return domain.Query{}, fmt.Errorf("not a git command: %q", s)
	}
	words = words[1:]

	// git -c key=value grep ...
	for len(words) >= 2 && words[0] == "-c" {
		words = words[2:]
	}
	if len(words) == 0 || words[0] != "grep" {
		return domain.Query{}, fmt.Errorf("not a git grep command: %q", s)
	}
	words = words[1:]

	var q domain.Query
	havePattern := false
	// operators seen since the last -e
	and, not := false, false
	setPattern := func(p string) error {
		switch {
		case !havePattern:
			if and || not {
				return fmt.Errorf("--and and --not must follow the pattern")
			}
			q.Pattern = p
			havePattern = true
		case and && not:
			if q.NotPattern != "" {
				return fmt.Errorf("multiple --not patterns are not supported")
			}
			q.NotPattern = p
		case and:
			if q.AndPattern != "" {
				return fmt.Errorf("multiple --and patterns are not supported")
			}
			q.AndPattern = p
		case not:
			return fmt.Errorf("--not is only supported after --and")
		default:
			return fmt.Errorf("multiple patterns are not supported")
		}
		and, not = false, false
		return nil
	}

	for i := 0; i < len(words); i++ {
		w := words[i]
		switch {
		case w == "--":
			q.Paths = append(q.Paths, words[i+1:]...)
			i = len(words)
		case w == "-e":
			if i+1 >= len(words) {
				return domain.Query{}, fmt.Errorf("-e requires a pattern")
			}
			i++
			if err := setPattern(words[i]); err != nil {
				return domain.Query{}, err
			}
		case w == "--and":
			and = true
		case w == "--not":
			not = true
		case and || not:
			return domain.Query{}, fmt.Errorf("expected -e after --and or --not, got %q", w)
		case neutralLong[w]:
		case strings.HasPrefix(w, "--"):
			f, ok := domain.FlagByName(strings.TrimPrefix(w, "--"))
			if !ok {
				return domain.Query{}, fmt.Errorf("unsupported option %q", w)
			}
			q.Flags = q.Flags.With(f)
		case strings.HasPrefix(w, "-") && len(w) > 1:
			for _, r := range w[1:] {
				if r == 'n' || r == 'I' {
					continue
				}
				f, ok := shortFlags[r]
				if !ok {
					return domain.Query{}, fmt.Errorf("unsupported option -%c", r)
				}
				q.Flags = q.Flags.With(f)
			}
		case !havePattern:
			q.Pattern = w
			havePattern = true
		default:
			// git grep treats words after the pattern as pathspecs
			q.Paths = append(q.Paths, w)
		}
	}

	if and || not {
		return domain.Query{}, fmt.Errorf("--and or --not without a pattern")
	}
	if !havePattern {
		return domain.Query{}, fmt.Errorf("no pattern in %q", s)
	}
	q.Cursor = q.RuneLen()
	return q, nil
}

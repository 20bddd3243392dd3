// Package command turns the lines of a MyMoney command file into typed
// commands.
//
// Parsing is purely lexical: the keyword decides the Kind and every
// following whitespace-separated token becomes an argument, with the
// trailing newline removed and all percent signs stripped. Converting
// arguments to numbers and months is left to the interpreter, which decides
// per command kind how to react to malformed values.
//
// Example usage:
//
//	cmd := command.Parse("CHANGE 11.00% 9.00% 4.00% FEBRUARY\n")
//	// cmd.Kind == command.Change
//	// cmd.Args == []string{"11.00", "9.00", "4.00", "FEBRUARY"}
package command

import (
	"fmt"
	"strings"
)

// Position is the location of a command in its source file.
type Position struct {
	Filename string
	Line     int // Line number (1-indexed)
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// Command is a single parsed line of a command file.
type Command struct {
	Kind Kind
	// Keyword is the first token as written, kept for error messages when
	// Kind is Unknown.
	Keyword string
	Args    []string
	Pos     Position
}

// Parse tokenizes one raw line. It never fails: an empty line or an
// unrecognised keyword yields a command of Kind Unknown.
func Parse(line string) Command {
	line = strings.TrimRight(line, "\r\n")
	line = strings.ReplaceAll(line, "%", "")

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: Unknown}
	}

	cmd := Command{
		Kind:    ParseKind(fields[0]),
		Keyword: fields[0],
	}
	if len(fields) > 1 {
		cmd.Args = fields[1:]
	}
	return cmd
}

// String renders the command back into its textual form.
func (c Command) String() string {
	keyword := c.Keyword
	if keyword == "" && c.Kind != Unknown {
		keyword = c.Kind.String()
	}
	if len(c.Args) == 0 {
		return keyword
	}
	return keyword + " " + strings.Join(c.Args, " ")
}

// Arg returns the i-th argument, or the empty string when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

package command

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"
)

// Script is a parsed command file.
type Script struct {
	Filename string
	Commands []Command
	Source   []byte
}

// InvalidUTF8Error is returned when a command file is not valid UTF-8.
type InvalidUTF8Error struct {
	Pos Position
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("%s: invalid UTF-8 encoding", e.Pos)
}

// GetPosition returns the line holding the invalid bytes.
func (e *InvalidUTF8Error) GetPosition() Position {
	return e.Pos
}

// ParseBytes parses a command file without a filename.
func ParseBytes(ctx context.Context, data []byte) (*Script, error) {
	return ParseBytesWithFilename(ctx, "", data)
}

// ParseBytesWithFilename parses every line of data into a command. Lines are
// split the way a line reader would: a final newline terminates the last
// line instead of starting an empty one, while blank lines in between are
// kept (and parse as Unknown commands).
func ParseBytesWithFilename(ctx context.Context, filename string, data []byte) (*Script, error) {
	script := &Script{
		Filename: filename,
		Source:   data,
	}

	lines := bytes.SplitAfter(data, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}

	script.Commands = make([]Command, 0, len(lines))
	for i, line := range lines {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pos := Position{Filename: filename, Line: i + 1}
		if !utf8.Valid(line) {
			return nil, &InvalidUTF8Error{Pos: pos}
		}

		cmd := Parse(string(line))
		cmd.Pos = pos
		script.Commands = append(script.Commands, cmd)
	}

	return script, nil
}

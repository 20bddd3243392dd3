package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/interpreter"
)

func TestErrorRenderer(t *testing.T) {
	source := []byte("ALLOCATE 6000 3000 1000\nSIP 2000 1000 500\nFOO\nBALANCE MARCH\nREBALANCE\nBALANCE JUNE\n")

	t.Run("WithSourceContext", func(t *testing.T) {
		err := &interpreter.ExecError{
			Command: command.Command{Keyword: "FOO", Pos: command.Position{Filename: "input.txt", Line: 3}},
			Err:     &interpreter.UnrecognizedCommandError{Keyword: "FOO"},
		}

		out := NewErrorRenderer(source).Render(err)
		assert.Contains(t, out, `input.txt:3: unrecognized command "FOO"`)
		assert.Contains(t, out, "1 | ALLOCATE 6000 3000 1000")
		assert.Contains(t, out, "3 | FOO")
		assert.Contains(t, out, "4 | BALANCE MARCH")
		assert.Contains(t, out, "  | ^^^\n")
		assert.Contains(t, out, "5 | REBALANCE")
		assert.NotContains(t, out, "BALANCE JUNE")
	})

	t.Run("LastLine", func(t *testing.T) {
		err := &command.InvalidUTF8Error{Pos: command.Position{Line: 6}}

		out := NewErrorRenderer(source).Render(err)
		assert.Contains(t, out, "6 | BALANCE JUNE")
		assert.Contains(t, out, "^^^^^^^^^^^^")
		assert.Equal(t, 4, strings.Count(out, " | "))
		assert.Equal(t, 1, strings.Count(out, "line 6"))
	})

	t.Run("WithoutPosition", func(t *testing.T) {
		out := NewErrorRenderer(source).Render(errors.New("boom"))
		assert.Contains(t, out, "boom")
		assert.NotContains(t, out, " | ")
	})

	t.Run("WithoutSource", func(t *testing.T) {
		err := &command.InvalidUTF8Error{Pos: command.Position{Line: 2}}
		out := NewErrorRenderer(nil).Render(err)
		assert.Contains(t, out, "invalid UTF-8 encoding")
		assert.NotContains(t, out, " | ")
	})
}

// Package loader reads MyMoney command files from disk and parses them into
// a command.Script.
//
// The loader only checks that the input is a readable regular file holding
// valid UTF-8. Validation of the commands themselves is left to the
// interpreter, which decides per command whether a problem is fatal.
//
// Example usage:
//
//	ldr := loader.New()
//	script, err := ldr.Load(ctx, "input.txt")
//
//	// Reject files larger than 1 MiB
//	ldr := loader.New(loader.WithMaxSize(1 << 20))
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

var (
	// ErrNotRegularFile is returned when the path names a directory, device
	// or other non-regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrTooLarge is returned when the file exceeds the configured maximum
	// size.
	ErrTooLarge = errors.New("file too large")
)

// FileError is returned when a command file cannot be opened or read.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Loader reads and parses command files.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithMaxSize(1 << 20))
type Loader struct {
	// MaxSize limits the number of bytes read from a file. Zero means no
	// limit.
	MaxSize int64
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithMaxSize rejects files larger than n bytes with ErrTooLarge.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		l.MaxSize = n
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads filename and parses every line into a command.
func (l *Loader) Load(ctx context.Context, filename string) (*command.Script, error) {
	timer := telemetry.StartTimer(ctx, "loader.load "+filename)
	defer timer.End()

	data, err := l.read(filename)
	if err != nil {
		return nil, err
	}

	return l.LoadBytes(ctx, filename, data)
}

// LoadBytes parses data as if it had been read from filename.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*command.Script, error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.parse (%d bytes)", len(data)))
	defer timer.End()

	if l.MaxSize > 0 && int64(len(data)) > l.MaxSize {
		return nil, &FileError{Filename: filename, Err: ErrTooLarge}
	}

	return command.ParseBytesWithFilename(ctx, filename, data)
}

// read returns the contents of filename after making sure it is a regular
// file.
func (l *Loader) read(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &FileError{Filename: filename, Err: err}
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, &FileError{Filename: filename, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &FileError{Filename: filename, Err: ErrNotRegularFile}
	}
	if l.MaxSize > 0 && info.Size() > l.MaxSize {
		return nil, &FileError{Filename: filename, Err: ErrTooLarge}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &FileError{Filename: filename, Err: err}
	}
	return data, nil
}

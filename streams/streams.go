// Package streams routes user-facing messages of layerconf (such as "created
// config file from default") to stdout/stderr, in-memory buffers, io.Discard,
// or a structured slog.Logger.
package streams

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// IOStreams is the contract layerconf writes notices to. Types defined in
// other packages satisfy it implicitly.
type IOStreams interface {
	In() io.Reader
	Out() io.Writer
	ErrOut() io.Writer
}

// BasicIOStreams forwards to fixed readers and writers.
type BasicIOStreams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (s BasicIOStreams) In() io.Reader     { return s.in }
func (s BasicIOStreams) Out() io.Writer    { return s.out }
func (s BasicIOStreams) ErrOut() io.Writer { return s.errOut }

// DefaultIOStreams is backed by os.Stdin, os.Stdout and os.Stderr.
func DefaultIOStreams() BasicIOStreams {
	return BasicIOStreams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// Writers sends Out to out and ErrOut to err. In is os.Stdin.
func Writers(out, err io.Writer) BasicIOStreams {
	return BasicIOStreams{in: os.Stdin, out: out, errOut: err}
}

// Discard drops all output.
func Discard() BasicIOStreams {
	return Writers(io.Discard, io.Discard)
}

// BuffersStreams captures output for later inspection. Not safe for
// concurrent writers.
type BuffersStreams struct {
	InR    io.Reader
	OutBuf *bytes.Buffer
	ErrBuf *bytes.Buffer
}

// Buffers creates a BuffersStreams with fresh buffers.
func Buffers() *BuffersStreams {
	return &BuffersStreams{
		InR:    os.Stdin,
		OutBuf: &bytes.Buffer{},
		ErrBuf: &bytes.Buffer{},
	}
}

func (b *BuffersStreams) In() io.Reader     { return b.InR }
func (b *BuffersStreams) Out() io.Writer    { return b.OutBuf }
func (b *BuffersStreams) ErrOut() io.Writer { return b.ErrBuf }

// Strings returns what has been written to Out and ErrOut so far.
func (b *BuffersStreams) Strings() (out, err string) {
	return b.OutBuf.String(), b.ErrBuf.String()
}

// Reset clears both buffers.
func (b *BuffersStreams) Reset() {
	b.OutBuf.Reset()
	b.ErrBuf.Reset()
}

// slogWriter turns each Write into one log record.
type slogWriter struct {
	l     *slog.Logger
	level slog.Level
}

func (w slogWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := bytes.TrimRight(p, "\n")
	w.l.Log(context.Background(), w.level, string(msg))
	return n, nil
}

// Slog writes Out messages at level info and ErrOut messages at level err.
func Slog(l *slog.Logger, info, err slog.Level) BasicIOStreams {
	return BasicIOStreams{
		in:     os.Stdin,
		out:    slogWriter{l: l, level: info},
		errOut: slogWriter{l: l, level: err},
	}
}

// Notify prints a line to s.Out(). Nil streams or writers are ignored.
func Notify(s IOStreams, format string, args ...any) {
	if s == nil || s.Out() == nil {
		return
	}
	fmt.Fprintf(s.Out(), format+"\n", args...)
}

// Warn prints a line to s.ErrOut(). Nil streams or writers are ignored.
func Warn(s IOStreams, format string, args ...any) {
	if s == nil || s.ErrOut() == nil {
		return
	}
	fmt.Fprintf(s.ErrOut(), format+"\n", args...)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

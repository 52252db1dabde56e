// Package input reads user lines without blocking past context cancellation.
package input

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// Reader hands out lines of an underlying reader one at a time. A single
// goroutine owns the buffered reader so no input is lost between calls.
type Reader struct {
	rd    io.Reader
	once  sync.Once
	lines chan line
}

func NewReader(rd io.Reader) *Reader {
	return &Reader{
		rd:    rd,
		lines: make(chan line),
	}
}

func (r *Reader) start() {
	go func() {
		defer close(r.lines)

		reader := bufio.NewReader(r.rd)
		for {
			text, err := reader.ReadString('\n')
			if text != "" || err == nil {
				r.lines <- line{text: strings.TrimRight(text, "\r\n")}
			}
			if err != nil {
				r.lines <- line{err: err}
				return
			}
		}
	}()
}

// ReadLine returns the next line without its line ending. io.EOF is
// returned once the input is exhausted.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(r.start)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// ReadLine reads a single line from rd.
func ReadLine(ctx context.Context, rd io.Reader) (string, error) {
	return NewReader(rd).ReadLine(ctx)
}

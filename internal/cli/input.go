package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
)

var errInputClosed = errors.New("input closed")

// lineReader reads lines on a goroutine so prompts can race them against a
// countdown.
type lineReader struct {
	lines chan string
	err   error
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{lines: make(chan string)}
	go func() {
		defer close(r.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			r.lines <- scanner.Text()
		}
		r.err = scanner.Err()
	}()
	return r
}

// next waits for a line without any deadline.
func (r *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			return "", r.closedErr()
		}
		return line, nil
	}
}

func (r *lineReader) closedErr() error {
	if r.err != nil {
		return r.err
	}
	return errInputClosed
}

package console

import (
	"bufio"
	"context"
	"io"
	"sync"
)

type line struct {
	text string
	err  error
}

// lineReader reads lines on a background goroutine so a pending prompt can be
// abandoned when the context is canceled.
type lineReader struct {
	src   io.Reader
	once  sync.Once
	lines chan line
}

func newLineReader(src io.Reader) *lineReader {
	return &lineReader{src: src, lines: make(chan line)}
}

func (r *lineReader) start() {
	go func() {
		defer close(r.lines)
		scanner := bufio.NewScanner(r.src)
		for scanner.Scan() {
			r.lines <- line{text: scanner.Text()}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		r.lines <- line{err: err}
	}()
}

// ReadLine returns the next line without its terminator. A closed input
// yields io.EOF.
func (r *lineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(r.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case next, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return next.text, next.err
	}
}

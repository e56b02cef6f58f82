package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// Source yields decoded codes, one per detection. Next blocks until a code
// is available and returns io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// LineSource reads one code per line, the way USB barcode readers type them.
// Blank lines are skipped. The reader is consumed on its own goroutine so a
// blocked read never holds Next past ctx; that goroutine lives until the
// reader returns.
type LineSource struct {
	r     io.Reader
	once  sync.Once
	lines chan line
}

type line struct {
	code string
	err  error
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r, lines: make(chan line)}
}

func (s *LineSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.once.Do(func() { go s.read() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.code, l.err
	}
}

func (s *LineSource) read() {
	defer close(s.lines)
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		if code := strings.TrimSpace(scanner.Text()); code != "" {
			s.lines <- line{code: code}
		}
	}
	if err := scanner.Err(); err != nil {
		s.lines <- line{err: err}
	}
}

// ChanSource adapts a channel of codes, e.g. fed by a camera decoder.
// A closed channel reads as io.EOF.
type ChanSource struct {
	codes <-chan string
}

func NewChanSource(codes <-chan string) *ChanSource {
	return &ChanSource{codes: codes}
}

func (s *ChanSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code, ok := <-s.codes:
		if !ok {
			return "", io.EOF
		}
		return code, nil
	}
}

// Package scanner drives a code source through the door's scan cycle:
// scan, handle one detection, settle, scan again.
package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSettleDelay is the pause after a detection in continuous mode, long
// enough for the guest to move the badge away from the reader.
const DefaultSettleDelay = 800 * time.Millisecond

// State is the session's place in the scan cycle. A detection moves the
// session from Scanning to CoolingDown, where it stays while the code is
// handled and, in continuous mode, for the settle delay after.
type State int

const (
	Idle State = iota
	Scanning
	CoolingDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case CoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}

// HandlerFunc processes one detected code. Its error is logged; it never
// stops the session.
type HandlerFunc func(ctx context.Context, code string) error

type Config struct {
	// Continuous resumes scanning after each detection. Otherwise the session
	// returns to Idle and waits for Start.
	Continuous  bool
	SettleDelay time.Duration
}

// Session is the scan cycle state machine. Detections are handled one at a
// time; codes read while the session is not Scanning are dropped.
type Session struct {
	mu     sync.Mutex
	state  State
	wake   chan struct{}
	source Source
	handle HandlerFunc
	cfg    Config
	clock  clockwork.Clock
	logger *slog.Logger
}

type Option func(*Session)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(source Source, handle HandlerFunc, cfg Config, opts ...Option) *Session {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	s := &Session{
		state:  Idle,
		wake:   make(chan struct{}, 1),
		source: source,
		handle: handle,
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins scanning. It has no effect unless the session is Idle; in
// continuous mode a settling session resumes on its own.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return
	}
	s.state = Scanning
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop returns the session to Idle. A detection being handled finishes.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run drives the cycle until ctx is done or the source is exhausted. It
// returns nil on exhaustion and ctx.Err() on cancellation.
func (s *Session) Run(ctx context.Context) error {
	for {
		if s.State() != Scanning {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}

		code, err := s.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.InfoContext(ctx, "scan source exhausted")
				s.Stop()
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		if !s.detected() {
			s.logger.DebugContext(ctx, "code dropped, session not scanning", "code", code)
			continue
		}
		if err := s.handle(ctx, code); err != nil {
			s.logger.ErrorContext(ctx, "scan handler failed", "error", err)
		}
		if !s.cfg.Continuous {
			s.mu.Lock()
			if s.state == CoolingDown {
				s.state = Idle
			}
			s.mu.Unlock()
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.cfg.SettleDelay):
		}
		s.mu.Lock()
		if s.state == CoolingDown {
			s.state = Scanning
		}
		s.mu.Unlock()
	}
}

// detected leaves Scanning for CoolingDown. It reports false when the session
// was stopped while the source was blocked.
func (s *Session) detected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Scanning {
		return false
	}
	s.state = CoolingDown
	return true
}

package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Server answers framed requests read from one stream and writes
// responses and events to another. Requests run concurrently, so
// responses may arrive out of request order; callers match them by ID.
type Server struct {
	d       *Dispatcher
	workers int

	mu sync.Mutex
	w  io.Writer
}

// NewServer creates a Server running at most workers requests at a time.
func NewServer(d *Dispatcher, workers int) *Server {
	return &Server{d: d, workers: max(workers, 1)}
}

// Serve reads requests from r until EOF, a framing error or ctx is done.
// It waits for in-flight requests before returning and drops any file-open
// subscription made over this stream. A read still blocked on r when ctx
// is done is abandoned; closing r ends it.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
	defer s.d.Unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	frames := s.readFrames(gctx, r)

	var readErr error
loop:
	for {
		var rf readResult
		select {
		case <-gctx.Done():
			break loop
		case rf = <-frames:
		}
		if errors.Is(rf.err, io.EOF) {
			break
		}
		if rf.err != nil {
			readErr = rf.err
			break
		}

		req, err := DecodeRequest(rf.frame)
		if err != nil {
			slog.Error("reject request", "id", req.ID, "error", err)
			if err := s.write(failure(req.ID, Classify(err))); err != nil {
				readErr = err
				break
			}
			continue
		}

		g.Go(func() error {
			return s.write(s.d.Handle(gctx, req, s.emit))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	return ctx.Err()
}

type readResult struct {
	frame []byte
	err   error
}

// readFrames reads frames from r on its own goroutine. The last value
// sent carries the error that stopped reading.
func (s *Server) readFrames(ctx context.Context, r io.Reader) <-chan readResult {
	frames := make(chan readResult)
	go func() {
		for {
			frame, err := ReadFrame(r)
			select {
			case frames <- readResult{frame: frame, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return frames
}

func (s *Server) write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteFrame(s.w, v)
}

func (s *Server) emit(ev Event) {
	if err := s.write(ev); err != nil {
		slog.Warn("push event", "event", ev.Event, "path", ev.Path, "error", err)
	}
}

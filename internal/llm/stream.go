package llm

import (
	"context"
	"io"
	"sync"
)

// Stream yields normalized events until io.EOF. A stream is finite and
// non-restartable; it is consumed once, in order.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// eventStream adapts a producer function to the Stream interface. The
// producer runs on its own goroutine and sends events into a channel;
// channel pacing gives implicit backpressure against the consumer.
type eventStream struct {
	events chan Event
	errCh  chan error

	cancel    context.CancelFunc
	closeOnce sync.Once

	err  error
	done bool
}

// newEventStream starts producer and returns a Stream over its events.
// The producer must return after its last event; a non-nil return
// surfaces from Recv in place of io.EOF.
func newEventStream(ctx context.Context, producer func(ctx context.Context, events chan<- Event) error) Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &eventStream{
		events: make(chan Event, 16),
		errCh:  make(chan error, 1),
		cancel: cancel,
	}
	go func() {
		err := producer(ctx, s.events)
		if err == nil {
			err = ctx.Err()
		}
		s.errCh <- err
		close(s.events)
	}()
	return s
}

func (s *eventStream) Recv() (Event, error) {
	if s.done {
		if s.err != nil {
			return Event{}, s.err
		}
		return Event{}, io.EOF
	}
	event, ok := <-s.events
	if !ok {
		s.done = true
		s.err = <-s.errCh
		if s.err != nil {
			return Event{}, s.err
		}
		return Event{}, io.EOF
	}
	return event, nil
}

func (s *eventStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		// Drain so the producer goroutine can finish.
		go func() {
			for range s.events {
			}
		}()
	})
	return nil
}

// batchStream replays a fixed event slice. Non-streaming backend calls
// are modeled as one batch fed through the same normalization path.
type batchStream struct {
	events []Event
	pos    int
}

func newBatchStream(events []Event) Stream {
	return &batchStream{events: events}
}

func (s *batchStream) Recv() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	event := s.events[s.pos]
	s.pos++
	return event, nil
}

func (s *batchStream) Close() error { return nil }

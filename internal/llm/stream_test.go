package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestEventStreamDeliversThenEOF(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "a"}
		events <- Event{Type: EventStop, Stop: StopEndTurn}
		return nil
	})
	defer stream.Close()

	event, err := stream.Recv()
	if err != nil || event.Text != "a" {
		t.Fatalf("first recv: %v %v", event, err)
	}
	event, err = stream.Recv()
	if err != nil || event.Type != EventStop {
		t.Fatalf("second recv: %v %v", event, err)
	}
	if _, err = stream.Recv(); err != io.EOF {
		t.Fatalf("err=%v, want io.EOF", err)
	}
	// EOF is sticky.
	if _, err = stream.Recv(); err != io.EOF {
		t.Fatalf("err=%v, want io.EOF again", err)
	}
}

func TestEventStreamProducerError(t *testing.T) {
	wantErr := errors.New("backend exploded")
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "partial"}
		return wantErr
	})
	defer stream.Close()

	if _, err := stream.Recv(); err != nil {
		t.Fatalf("first recv: %v", err)
	}
	if _, err := stream.Recv(); !errors.Is(err, wantErr) {
		t.Fatalf("err=%v, want %v", err, wantErr)
	}
}

func TestEventStreamCloseUnblocksProducer(t *testing.T) {
	produced := make(chan struct{})
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		defer close(produced)
		for i := 0; i < 1000; i++ {
			select {
			case events <- Event{Type: EventTextDelta, Text: "x"}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if _, err := stream.Recv(); err != nil {
		t.Fatalf("recv: %v", err)
	}
	stream.Close()

	select {
	case <-produced:
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after Close")
	}
}

func TestBatchStreamReplay(t *testing.T) {
	events := []Event{
		{Type: EventTextDelta, Text: "one"},
		{Type: EventStop, Stop: StopEndTurn},
	}
	stream := newBatchStream(events)

	for i := range events {
		event, err := stream.Recv()
		if err != nil {
			t.Fatalf("recv %d: %v", i, err)
		}
		if event.Type != events[i].Type {
			t.Errorf("event %d type=%v", i, event.Type)
		}
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Fatalf("err=%v, want io.EOF", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

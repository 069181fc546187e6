package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		errors.New("429 too many requests"),
		errors.New("rate limit exceeded"),
		errors.New("503 service unavailable"),
		errors.New("api overloaded"),
		errors.New("connection reset by peer"),
		&RateLimitError{Provider: "test", RetryAfter: 5 * time.Second},
	}
	for _, err := range retryable {
		if !isRetryable(err) {
			t.Errorf("%v should be retryable", err)
		}
	}

	permanent := []error{
		nil,
		errors.New("401 unauthorized"),
		errors.New("invalid request"),
		&RateLimitError{Provider: "test", RetryAfter: time.Hour},
	}
	for _, err := range permanent {
		if isRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}

func TestCalculateBackoffHonorsRetryAfter(t *testing.T) {
	r := &RetryProvider{config: DefaultRetryConfig()}

	wait := r.calculateBackoff(1, &RateLimitError{RetryAfter: 7 * time.Second})
	if wait != 7*time.Second {
		t.Errorf("wait=%v, want 7s", wait)
	}

	wait = r.calculateBackoff(1, errors.New("429: retry-after: 3"))
	if wait != 3*time.Second {
		t.Errorf("wait=%v, want 3s", wait)
	}

	// Server-supplied waits are capped.
	wait = r.calculateBackoff(1, &RateLimitError{RetryAfter: 10 * time.Minute})
	if wait != r.config.MaxBackoff {
		t.Errorf("wait=%v, want cap %v", wait, r.config.MaxBackoff)
	}
}

func TestRetryProviderRecoversFromTransientError(t *testing.T) {
	inner := &scriptedProvider{
		caps: Capabilities{DefaultMaxTokens: 4096},
		errs: []error{errors.New("503 service unavailable"), nil},
		batches: [][]Event{
			nil, // consumed by the failing attempt
			{
				{Type: EventTextDelta, Text: "recovered"},
				{Type: EventStop, Stop: StopEndTurn},
			},
		},
	}
	provider := WrapWithRetry(inner, RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})

	stream, err := provider.Stream(context.Background(), Request{Stream: true})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var text string
	for {
		event, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if event.Type == EventTextDelta {
			text += event.Text
		}
	}
	if text != "recovered" {
		t.Errorf("text=%q", text)
	}
	if len(inner.requests) != 2 {
		t.Errorf("attempts=%d, want 2", len(inner.requests))
	}
}

// midStreamFailProvider emits part of a response and then fails with a
// transient error, on every attempt.
type midStreamFailProvider struct {
	attempts int
}

func (p *midStreamFailProvider) Name() string               { return "flaky" }
func (p *midStreamFailProvider) Capabilities() Capabilities { return Capabilities{} }

func (p *midStreamFailProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	p.attempts++
	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "partial "}
		return errors.New("503 service unavailable")
	}), nil
}

func TestRetryProviderDoesNotReplayPartialResponse(t *testing.T) {
	inner := &midStreamFailProvider{}
	provider := WrapWithRetry(inner, RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})

	stream, err := provider.Stream(context.Background(), Request{Stream: true})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var text string
	var recvErr error
	for {
		event, err := stream.Recv()
		if err != nil {
			recvErr = err
			break
		}
		if event.Type == EventTextDelta {
			text += event.Text
		}
	}
	// The failure surfaces instead of the request being replayed: the
	// consumer must never see the partial response twice.
	if recvErr == io.EOF {
		t.Fatal("mid-stream failure swallowed")
	}
	if text != "partial " {
		t.Errorf("text=%q, want single partial response", text)
	}
	if inner.attempts != 1 {
		t.Errorf("attempts=%d, want 1", inner.attempts)
	}
}

func TestRetryProviderGivesUpOnPermanentError(t *testing.T) {
	inner := &scriptedProvider{
		caps: Capabilities{DefaultMaxTokens: 4096},
		errs: []error{errors.New("401 unauthorized")},
	}
	provider := WrapWithRetry(inner, DefaultRetryConfig())

	stream, err := provider.Stream(context.Background(), Request{Stream: true})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	_, err = stream.Recv()
	if err == nil || err == io.EOF {
		t.Fatalf("err=%v, want permanent failure", err)
	}
	if len(inner.requests) != 1 {
		t.Errorf("attempts=%d, want 1", len(inner.requests))
	}
}

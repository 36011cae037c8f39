package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	calls     int
	responses []string
	errs      []error
}

func (f *fakeBackend) GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.errs) {
		idx = len(f.errs) - 1
	}
	return f.responses[idx], f.errs[idx]
}

func (f *fakeBackend) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func alwaysFailing(err error) *fakeBackend {
	return &fakeBackend{
		responses: []string{""},
		errs:      []error{err},
	}
}

func TestRetryingClient_ExhaustsAttemptsWithBackoff(t *testing.T) {
	backend := alwaysFailing(errors.New("connection refused"))

	var slept []time.Duration
	client := NewRetryingClient(RetryingClientParams{
		Backend:   backend,
		BaseDelay: time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})

	_, err := client.GenerateCompletion(context.Background(), "any prompt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T: %v", err, err)
	}
	if genErr.Attempts != 5 {
		t.Fatalf("expected 5 attempts recorded, got %d", genErr.Attempts)
	}
	if backend.calls != 5 {
		t.Fatalf("expected backend invoked exactly 5 times, got %d", backend.calls)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(slept))
	}
	var total time.Duration
	for i, d := range slept {
		if d != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], d)
		}
		total += d
	}
	if total != 15*time.Second {
		t.Fatalf("expected 15s total backoff before final attempt, got %v", total)
	}
}

func TestRetryingClient_SuccessAfterTransientFailures(t *testing.T) {
	backend := &fakeBackend{
		responses: []string{"", "", "the answer"},
		errs:      []error{errors.New("503"), errors.New("503"), nil},
	}
	client := NewRetryingClient(RetryingClientParams{
		Backend: backend,
		Sleep:   func(ctx context.Context, d time.Duration) error { return nil },
	})

	got, err := client.GenerateCompletion(context.Background(), "q")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "the answer" {
		t.Fatalf("expected %q, got %q", "the answer", got)
	}
	if backend.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", backend.calls)
	}
}

func TestRetryingClient_EmptyCompletionIsNotRetried(t *testing.T) {
	backend := &fakeBackend{
		responses: []string{""},
		errs:      []error{nil},
	}
	client := NewRetryingClient(RetryingClientParams{
		Backend: backend,
		Sleep:   func(ctx context.Context, d time.Duration) error { return nil },
	})

	got, err := client.GenerateCompletion(context.Background(), "q")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty completion passed through, got %q", got)
	}
	if backend.calls != 1 {
		t.Fatalf("expected 1 call, got %d", backend.calls)
	}
}

func TestRetryingClient_ContextCancellationAbortsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := alwaysFailing(errors.New("timeout"))
	client := NewRetryingClient(RetryingClientParams{
		Backend: backend,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	_, err := client.GenerateCompletion(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("expected retries aborted after 1 call, got %d", backend.calls)
	}
}

func TestGenerationError_Unwrap(t *testing.T) {
	root := errors.New("root cause")
	err := &GenerationError{Attempts: 5, LastErr: root}
	if !errors.Is(err, root) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

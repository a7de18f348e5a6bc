package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoopStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls >= 3 {
				cancel()
			}

			return nil
		},
	}

	err := Loop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Loop() error = %v, want context.Canceled", err)
	}

	if calls < 3 {
		t.Errorf("process called %d times, want at least 3", calls)
	}
}

func TestLoopOnErrorStops(t *testing.T) {
	wantErr := errors.New("fatal")

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			return wantErr
		},
		OnError: func(error) bool { return false },
	}

	err := Loop(context.Background(), cfg)
	if !errors.Is(err, wantErr) {
		t.Errorf("Loop() error = %v, want %v", err, wantErr)
	}
}

func TestWaitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestWaitZeroDuration(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait(0) error = %v, want nil", err)
	}
}

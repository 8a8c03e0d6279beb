package fpcache

import (
	"context"
	"errors"
	"testing"
)

func TestRetryOnBusyRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryOnBusy: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("no such table: fingerprints")
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("got err=%v after %d calls, want %v after 1", err, calls, boom)
	}
}

func TestRetryOnBusyGivesUp(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	if err == nil || calls != busyRetryAttempts {
		t.Fatalf("got err=%v after %d calls, want busy error after %d", err, calls, busyRetryAttempts)
	}
}

func TestRetryOnBusyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryOnBusy(ctx, func() error { return errors.New("database is locked") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

package service

import (
	"errors"
	"testing"
)

func TestServiceManagerLifecycle(t *testing.T) {
	m := NewServiceManager("ticker", "ohlcv")
	defer m.StopAll()

	state, err := m.Start("ticker")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !state.Running || state.StartedAt == "" {
		t.Fatalf("state after start = %+v, want running", state)
	}

	// Starting a running service is a no-op.
	again, err := m.Start("ticker")
	if err != nil {
		t.Fatalf("Start (repeat): %v", err)
	}
	if again.StartedAt != state.StartedAt {
		t.Fatalf("repeat start changed StartedAt: %s != %s", again.StartedAt, state.StartedAt)
	}

	state, err = m.Stop("ticker")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if state.Running {
		t.Fatalf("state after stop = %+v, want stopped", state)
	}

	// Stopping a stopped service is a no-op.
	if _, err := m.Stop("ticker"); err != nil {
		t.Fatalf("Stop (repeat): %v", err)
	}

	state, err = m.Restart("ohlcv")
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if !state.Running {
		t.Fatalf("state after restart = %+v, want running", state)
	}
}

func TestServiceManagerUnknownService(t *testing.T) {
	m := NewServiceManager("ticker")

	if _, err := m.Start("bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Start unknown = %v, want ErrInvalidInput", err)
	}
	if _, err := m.Stop("bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Stop unknown = %v, want ErrInvalidInput", err)
	}
	if _, err := m.Status("bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Status unknown = %v, want ErrInvalidInput", err)
	}
}

func TestServiceManagerStatusAll(t *testing.T) {
	m := NewServiceManager("ticker", "ohlcv", "account")
	defer m.StopAll()

	if _, err := m.Start("ohlcv"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	states := m.StatusAll()
	if len(states) != 3 {
		t.Fatalf("state count = %d, want 3", len(states))
	}
	if !states["ohlcv"].Running {
		t.Fatal("ohlcv should be running")
	}
	if states["ticker"].Running || states["account"].Running {
		t.Fatal("ticker/account should not be running")
	}
}

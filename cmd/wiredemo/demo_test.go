package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestDemoRun(t *testing.T) {
	cfg := config{frames: 10, wires: 4, board: 8, gestureFrames: 5}
	d, err := newDemo(cfg)
	if err != nil {
		t.Fatalf("newDemo failed: %v", err)
	}
	defer d.close()

	if err := d.run(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Each committed wire has two pins; two gestures complete in 10 frames.
	if got, want := d.wires.Len(), (4+2)*3; got != want {
		t.Errorf("wires.Len() = %d, want %d", got, want)
	}
	if got := d.board.Len(); got != 64 {
		t.Errorf("board.Len() = %d, want 64", got)
	}
	if d.gesture.active {
		t.Error("gesture still active after its release frame")
	}
}

func TestDemoInterrupted(t *testing.T) {
	d, err := newDemo(config{frames: 100, wires: 1, board: 4, gestureFrames: 10, dirtyTracking: true})
	if err != nil {
		t.Fatalf("newDemo failed: %v", err)
	}
	defer d.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.run(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := d.wires.Len(); got != 3 {
		t.Errorf("wires.Len() = %d, want 3", got)
	}
}

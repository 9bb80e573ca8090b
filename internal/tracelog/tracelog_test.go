package tracelog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLossTrackerFirstObservationInitializes(t *testing.T) {
	var lt LossTracker
	got := lt.Observe(0.5)
	if got != 0.5 {
		t.Fatalf("Observe first call = %v, want 0.5", got)
	}
}

func TestLossTrackerSmoothsSubsequentObservations(t *testing.T) {
	var lt LossTracker
	lt.Observe(1.0)
	got := lt.Observe(0.0)
	want := float32(emaBeta*1.0 + (1-emaBeta)*0.0)
	if got != want {
		t.Fatalf("Observe = %v, want %v", got, want)
	}
	if lt.EMA() != got {
		t.Fatalf("EMA() = %v, want %v", lt.EMA(), got)
	}
}

func TestTracerWriteFrameEmitsScatterBlock(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(&buf)
	if err := tr.WriteFrame([]float32{1, 2}, []float32{1.1, 1.9}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"target = [", "output = [", "scatter(1:2", "legend('show')"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTracerWriteFrameRejectsLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(&buf)
	if err := tr.WriteFrame([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatal("expected error on length mismatch")
	}
}

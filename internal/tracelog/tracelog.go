// Package tracelog recovers the training diagnostics of spec §4.7 and
// §6.2: an exponentially-smoothed loss and a MATLAB-style trace file
// for offline plotting, grounded on the original's Logger
// (logger.cpp's flushRegressionAnalytics and accumulateLoss).
package tracelog

import (
	"fmt"
	"io"
	"log/slog"
)

// emaBeta is spec §4.7's smoothing factor: ema <- beta*ema + (1-beta)*loss.
const emaBeta = 0.98

// LossTracker holds the running exponential moving average of the
// training loss. The zero value starts the average at the first
// observed loss, matching the original's accumulateLoss semantics for
// its first sample.
type LossTracker struct {
	ema  float32
	init bool
}

// Observe folds loss into the EMA and returns the updated average.
func (t *LossTracker) Observe(loss float32) float32 {
	if !t.init {
		t.ema = loss
		t.init = true
		return t.ema
	}
	t.ema = emaBeta*t.ema + (1-emaBeta)*loss
	return t.ema
}

// EMA returns the current smoothed loss without updating it.
func (t *LossTracker) EMA() float32 { return t.ema }

// Tracer emits the MATLAB/Octave-style .m trace file the original's
// Logger wrote on every flush: a clf/scatter block per sample,
// plotting target against predicted output vectors.
type Tracer struct {
	w io.Writer
}

// NewTracer wraps w in a Tracer. WriteFrame only appends to w; the
// Tracer never truncates or rewrites it.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// WriteFrame appends one target-vs-output scatter block, mirroring
// flushRegressionAnalytics's per-sample output exactly.
func (tr *Tracer) WriteFrame(target, output []float32) error {
	if len(target) != len(output) {
		return fmt.Errorf("tracelog: target/output length mismatch: %d vs %d", len(target), len(output))
	}
	n := len(target)

	fmt.Fprintln(tr.w, "clf; hold on;")
	fmt.Fprintln(tr.w, `ylim([-1 1], "Manual");`)

	fmt.Fprint(tr.w, "target = [")
	writeRow(tr.w, target)
	fmt.Fprintln(tr.w, "];")

	fmt.Fprint(tr.w, "output = [")
	writeRow(tr.w, output)
	fmt.Fprintln(tr.w, "];")

	fmt.Fprintf(tr.w, "scatter(1:%d, target, 'filled', 'b', 'DisplayName', 'Target');\n", n)
	fmt.Fprintf(tr.w, "scatter(1:%d, output, 'filled', 'r', 'DisplayName', 'Prediction');\n", n)
	fmt.Fprintln(tr.w, "legend('show');")
	fmt.Fprintln(tr.w, "pause(0.01);")
	return nil
}

func writeRow(w io.Writer, vals []float32) {
	for i, v := range vals {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%v", v)
	}
}

// LogPassComplete emits the structured per-pass diagnostic line spec
// §7 describes informally ("✨ Loss: ..."); here via slog rather than
// a bare stream, per SPEC_FULL §5's ambient-stack resolution.
func LogPassComplete(pass int, loss, emaLoss, teacherRate, exploreScale float32) {
	slog.Info("pass complete",
		"pass", pass,
		"loss", loss,
		"emaLoss", emaLoss,
		"teacherRate", teacherRate,
		"exploreScale", exploreScale,
	)
}

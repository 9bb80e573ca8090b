package ratefilter

import "testing"

func TestProcessInitializesToFirstInput(t *testing.T) {
	f := New(0.05, false, 1)
	got := f.Process([]float32{1, 2, 3}, 0.01)
	for i, v := range got {
		if v != float32(i+1) {
			t.Fatalf("Process first call = %v, want raw", got)
		}
	}
}

func TestProcessIIRApproachesInput(t *testing.T) {
	f := New(0.05, false, 1)
	f.Process([]float32{0}, 0.01)
	var last float32
	for i := 0; i < 100; i++ {
		out := f.Process([]float32{1}, 0.01)
		last = out[0]
	}
	if last < 0.9 {
		t.Fatalf("IIR did not converge toward input: last = %v", last)
	}
}

func TestProcessFIRAveragesHistory(t *testing.T) {
	f := New(0, true, 2) // tau=0 gives alpha=1, so the IIR passes raw through; isolate FIR averaging
	a := f.Process([]float32{0}, 1)
	b := f.Process([]float32{2}, 1)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("unexpected output length")
	}
	if a[0] != 0 || b[0] != 1 {
		t.Fatalf("FIR outputs = %v, %v; want 0, then mean(0, 2) = 1", a[0], b[0])
	}
}

func TestSetFIRSizeChangesWindow(t *testing.T) {
	f := New(0.05, true, 1)
	f.SetFIRSize(3)
	for i := 0; i < 5; i++ {
		f.Process([]float32{float32(i)}, 0.01)
	}
	if len(f.history) != 3 {
		t.Fatalf("history length = %d, want 3", len(f.history))
	}
}

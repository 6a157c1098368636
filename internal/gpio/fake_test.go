package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []Inputs{
		{Gas: true},
		{Enter: true, Keys: [4]bool{true, true, false, false}},
		{Test: true},
	}

	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %+v, got %+v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != samples[2] {
		t.Errorf("sample 3 (repeat): expected %+v, got %+v", samples[2], got)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Inputs{{Gas: true}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]Inputs{{Gas: true}, {}})

	f.Read()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("should not be closed after Reset()")
	}
	got, _ := f.Read()
	if !got.Gas {
		t.Errorf("after reset: expected first sample, got %+v", got)
	}
}

func TestFakeWriter(t *testing.T) {
	w := NewFakeWriter()

	if w.Last() != (Outputs{}) {
		t.Error("Last should be the zero image before any write")
	}

	w.Write(Outputs{Siren: true, AlarmLED: true})
	w.Write(Outputs{Siren: true})
	if len(w.Written) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(w.Written))
	}
	if w.Last() != (Outputs{Siren: true}) {
		t.Errorf("unexpected last image: %+v", w.Last())
	}

	w.WriteError = errors.New("line busy")
	if err := w.Write(Outputs{}); err == nil {
		t.Error("expected write error")
	}
	if len(w.Written) != 2 {
		t.Error("failed write should not be recorded")
	}

	w.Close()
	if !w.Closed {
		t.Error("should be closed after Close()")
	}
}

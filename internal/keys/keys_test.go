package keys

import (
	"errors"
	"testing"
	"time"
)

type press struct {
	key  Key
	mods Modifier
	gap  time.Duration
}

type recordSink struct {
	presses []press
	failAt  int // 1-based press index that fails; 0 never fails
	err     error
}

func (r *recordSink) Name() string { return "record" }

func (r *recordSink) Press(k Key, mods Modifier, gap time.Duration) error {
	if r.failAt > 0 && len(r.presses)+1 == r.failAt {
		return r.err
	}
	r.presses = append(r.presses, press{k, mods, gap})
	return nil
}

func TestDerivedPresses(t *testing.T) {
	tests := []struct {
		name string
		call func(*Synthesizer) error
		want press
	}{
		{"shift enter", (*Synthesizer).ShiftEnter, press{Return, ModShift, DefaultDelay}},
		{"paste", (*Synthesizer).Paste, press{V, ModPrimary, DefaultDelay}},
		{"copy", (*Synthesizer).Copy, press{C, ModPrimary, DefaultDelay}},
		{"backspace", (*Synthesizer).Backspace, press{Delete, 0, DefaultDelay}},
		{"extend left", func(s *Synthesizer) error { return s.Left(true) }, press{Left, ModShift, DefaultDelay}},
		{"move left", func(s *Synthesizer) error { return s.Left(false) }, press{Left, 0, DefaultDelay}},
		{"extend right", func(s *Synthesizer) error { return s.Right(true) }, press{Right, ModShift, DefaultDelay}},
		{"move right", func(s *Synthesizer) error { return s.Right(false) }, press{Right, 0, DefaultDelay}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordSink{}
			s := NewSynthesizer(sink, DefaultDelay)
			if err := tt.call(s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sink.presses) != 1 {
				t.Fatalf("expected 1 press, got %d", len(sink.presses))
			}
			if sink.presses[0] != tt.want {
				t.Errorf("got %+v, want %+v", sink.presses[0], tt.want)
			}
		})
	}
}

func TestPressWrapsSinkError(t *testing.T) {
	sink := &recordSink{failAt: 1, err: ErrEvent}
	s := NewSynthesizer(sink, 0)

	err := s.Paste()
	if !errors.Is(err, ErrEvent) {
		t.Fatalf("expected ErrEvent, got %v", err)
	}
	if len(sink.presses) != 0 {
		t.Errorf("failed press was recorded: %+v", sink.presses)
	}
}

func TestWithDelay(t *testing.T) {
	sink := &recordSink{}
	s := NewSynthesizer(sink, DefaultDelay)
	fast := s.WithDelay(2 * time.Millisecond)

	if err := fast.Left(true); err != nil {
		t.Fatal(err)
	}
	if err := s.Left(true); err != nil {
		t.Fatal(err)
	}
	if sink.presses[0].gap != 2*time.Millisecond {
		t.Errorf("fast gap = %v", sink.presses[0].gap)
	}
	if sink.presses[1].gap != DefaultDelay {
		t.Errorf("base gap changed to %v", sink.presses[1].gap)
	}
	if fast.Sink() != s.Sink() {
		t.Error("WithDelay should share the sink")
	}
}

func TestStrings(t *testing.T) {
	if Return.String() != "Return" || Key(42).String() != "Key(42)" {
		t.Errorf("unexpected key names: %s %s", Return, Key(42))
	}
	if (ModShift | ModPrimary).String() != "shift+primary" {
		t.Errorf("unexpected modifier name %s", ModShift|ModPrimary)
	}
}

package reader

import (
	"errors"
	"testing"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/mediator"
	"go.klb.dev/ghostkey/internal/simdesk"
)

func newTest(d *simdesk.Desk, collapse config.Collapse) *Reader {
	cfg := config.Config{
		Timing:   config.Timing{VerifyAttempts: 50},
		Collapse: collapse,
	}
	synth := keys.NewSynthesizer(d, 0)
	return New(d, synth, mediator.New(d, synth, cfg.Timing), cfg)
}

func TestReadPreceding(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		caret int
		n     int
		want  string
	}{
		{"end of field", "Hello, world", 12, 5, "world"},
		{"middle of field", "Hello, world", 5, 3, "llo"},
		{"clamped at start", "Hi", 2, 10, "Hi"},
		{"multi-byte", "naïve café", 10, 4, "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := simdesk.New("")
			d.SetText(tt.text, tt.caret)
			d.SetClipboard("old")

			got, err := newTest(d, config.CollapseSingle).ReadPreceding(tt.n)
			if err != nil {
				t.Fatalf("ReadPreceding: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if c := d.Caret(); c != tt.caret {
				t.Errorf("caret moved: %d -> %d", tt.caret, c)
			}
			if s, e := d.Selection(); s != e {
				t.Errorf("selection left behind: [%d,%d)", s, e)
			}
			if clip, ok := d.Clipboard(); !ok || clip != "old" {
				t.Errorf("clipboard = %q, %v; want old", clip, ok)
			}
			if got := d.Text(); got != tt.text {
				t.Errorf("field modified: %q", got)
			}
		})
	}
}

func TestReadAtFieldStart(t *testing.T) {
	d := simdesk.New("")
	d.SetText("abc", 0)

	got, err := newTest(d, config.CollapseSingle).ReadPreceding(3)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if d.Caret() != 0 {
		t.Errorf("caret = %d, want 0", d.Caret())
	}
	if _, ok := d.Clipboard(); ok {
		t.Error("clipboard should stay empty")
	}
}

func TestReadPerCharCollapse(t *testing.T) {
	d := simdesk.New("one two")
	r := newTest(d, config.CollapsePerChar)

	got, err := r.ReadPreceding(3)
	if err != nil {
		t.Fatal(err)
	}
	if got != "two" {
		t.Errorf("got %q", got)
	}
	if n := d.Count(keys.Right, 0); n != 3 {
		t.Errorf("Right presses = %d, want 3", n)
	}
	// Caret was at the end, so the extra presses are absorbed.
	if d.Caret() != 7 {
		t.Errorf("caret = %d", d.Caret())
	}
}

func TestReadZero(t *testing.T) {
	d := simdesk.New("abc")
	got, err := newTest(d, config.CollapseSingle).ReadPreceding(0)
	if err != nil || got != "" {
		t.Fatalf("got %q, %v", got, err)
	}
	if len(d.Presses()) != 0 {
		t.Error("no events expected for n == 0")
	}
}

func TestReadFailureRestores(t *testing.T) {
	d := simdesk.New("abcdef")
	d.SetClipboard("old")
	d.FailPress(3, keys.ErrEvent)

	_, err := newTest(d, config.CollapseSingle).ReadPreceding(5)
	if !errors.Is(err, keys.ErrEvent) {
		t.Fatalf("err = %v, want ErrEvent", err)
	}
	if d.Caret() != 6 {
		t.Errorf("caret = %d, want 6 after best-effort collapse", d.Caret())
	}
	if s, e := d.Selection(); s != e {
		t.Errorf("selection left behind: [%d,%d)", s, e)
	}
	if clip, _ := d.Clipboard(); clip != "old" {
		t.Errorf("clipboard = %q, want old", clip)
	}
}

func TestReadSlowCopy(t *testing.T) {
	d := simdesk.New("Hello, world")
	d.SetClipboard("old")
	d.SetCopyLag(5)

	got, err := newTest(d, config.CollapseSingle).ReadPreceding(5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "world" {
		t.Errorf("got %q, want world", got)
	}
	if d.Caret() != 12 {
		t.Errorf("caret = %d, want 12", d.Caret())
	}
	if s, e := d.Selection(); s != e {
		t.Errorf("selection left behind: [%d,%d)", s, e)
	}
	if clip, _ := d.Clipboard(); clip != "old" {
		t.Errorf("clipboard = %q, want old", clip)
	}
}

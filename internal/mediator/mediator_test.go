package mediator

import (
	"errors"
	"testing"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/simdesk"
)

func testTiming() config.Timing {
	return config.Timing{VerifyAttempts: 50}
}

func newTest(d *simdesk.Desk) *Mediator {
	return New(d, keys.NewSynthesizer(d, 0), testTiming())
}

func TestInsertImmediateRestoresSnapshot(t *testing.T) {
	d := simdesk.New("Dear team,")
	d.SetClipboard("old")
	m := newTest(d)

	if err := m.InsertImmediate(" thanks"); err != nil {
		t.Fatalf("InsertImmediate: %v", err)
	}
	if got := d.Text(); got != "Dear team, thanks" {
		t.Errorf("text = %q", got)
	}
	if got, ok := d.Clipboard(); !ok || got != "old" {
		t.Errorf("clipboard = %q, %v; want old", got, ok)
	}
	if n := d.Count(keys.V, keys.ModPrimary); n != 1 {
		t.Errorf("paste presses = %d, want 1", n)
	}
}

func TestInsertImmediateClearsWhenNothingCaptured(t *testing.T) {
	d := simdesk.New("")
	m := newTest(d)

	if err := m.InsertImmediate("ghost"); err != nil {
		t.Fatal(err)
	}
	if got, ok := d.Clipboard(); ok {
		t.Errorf("clipboard = %q, want empty", got)
	}
}

func TestVerificationRetries(t *testing.T) {
	d := simdesk.New("")
	d.SetClipboard("old")
	d.SetStaleReads(10)
	m := newTest(d)

	prev, err := m.InsertDeferred("ghost")
	if err != nil {
		t.Fatalf("InsertDeferred: %v", err)
	}
	if prev != (Snapshot{Text: "old", Present: true}) {
		t.Errorf("snapshot = %+v", prev)
	}
	if got := d.Text(); got != "ghost" {
		t.Errorf("text = %q", got)
	}
}

func TestVerificationTimeoutNeverPastes(t *testing.T) {
	d := simdesk.New("")
	d.SetClipboard("old")
	d.SetStaleReads(100)
	m := New(d, keys.NewSynthesizer(d, 0), config.Timing{VerifyAttempts: 10})

	err := m.InsertImmediate("ghost")
	if !errors.Is(err, ErrVerifyTimeout) {
		t.Fatalf("err = %v, want ErrVerifyTimeout", err)
	}
	if n := len(d.Presses()); n != 0 {
		t.Errorf("%d presses after failed verification", n)
	}
	if got := d.Text(); got != "" {
		t.Errorf("text = %q, nothing should be pasted", got)
	}
	if got, _ := d.Clipboard(); got != "old" {
		t.Errorf("clipboard = %q, want old put back", got)
	}
}

func TestDroppedWriteTimesOut(t *testing.T) {
	d := simdesk.New("")
	d.DropWrites(true)
	m := New(d, keys.NewSynthesizer(d, 0), config.Timing{VerifyAttempts: 3})

	if _, err := m.InsertDeferred("ghost"); !errors.Is(err, ErrVerifyTimeout) {
		t.Fatalf("err = %v, want ErrVerifyTimeout", err)
	}
}

func TestPasteFailureRestoresClipboard(t *testing.T) {
	d := simdesk.New("")
	d.SetClipboard("old")
	d.FailPress(1, keys.ErrEvent)
	m := newTest(d)

	err := m.InsertImmediate("ghost")
	if !errors.Is(err, keys.ErrEvent) {
		t.Fatalf("err = %v, want ErrEvent", err)
	}
	if errors.Is(err, ErrRestore) {
		t.Error("a failed paste is not a restore failure")
	}
	if got, _ := d.Clipboard(); got != "old" {
		t.Errorf("clipboard = %q, want old", got)
	}
}

// dropText loses writes of one particular value.
type dropText struct {
	*simdesk.Desk
	drop string
}

func (b dropText) WriteText(text string) error {
	if text == b.drop {
		return nil
	}
	return b.Desk.WriteText(text)
}

func TestRestoreFailureAfterPaste(t *testing.T) {
	d := simdesk.New("")
	d.SetClipboard("old")
	m := New(dropText{d, "old"}, keys.NewSynthesizer(d, 0), config.Timing{VerifyAttempts: 3})

	err := m.InsertImmediate("ghost")
	if !errors.Is(err, ErrRestore) || !errors.Is(err, ErrVerifyTimeout) {
		t.Fatalf("err = %v, want ErrRestore wrapping ErrVerifyTimeout", err)
	}
	if got := d.Text(); got != "ghost" {
		t.Errorf("text = %q, the paste should have landed", got)
	}
}

func TestRestore(t *testing.T) {
	d := simdesk.New("")
	d.SetClipboard("ghost")
	m := newTest(d)

	if err := m.Restore(Snapshot{Text: "old", Present: true}); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.Clipboard(); got != "old" {
		t.Errorf("clipboard = %q", got)
	}
	if err := m.Restore(Snapshot{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Clipboard(); ok {
		t.Error("restoring an absent snapshot should clear the clipboard")
	}
}

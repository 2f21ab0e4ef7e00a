package simdesk

import (
	"errors"
	"testing"

	"go.klb.dev/ghostkey/internal/keys"
)

func press(t *testing.T, d *Desk, k keys.Key, mods keys.Modifier) {
	t.Helper()
	if err := d.Press(k, mods, 0); err != nil {
		t.Fatalf("press %s: %v", k, err)
	}
}

func TestSelectCopyCollapse(t *testing.T) {
	d := New("hello world")
	for range 5 {
		press(t, d, keys.Left, keys.ModShift)
	}
	if s, e := d.Selection(); s != 6 || e != 11 {
		t.Fatalf("selection = [%d,%d), want [6,11)", s, e)
	}

	press(t, d, keys.C, keys.ModPrimary)
	if text, ok := d.Clipboard(); !ok || text != "world" {
		t.Fatalf("clipboard = %q, %v", text, ok)
	}

	press(t, d, keys.Right, 0)
	if d.Caret() != 11 {
		t.Errorf("caret = %d, want 11", d.Caret())
	}
	if s, e := d.Selection(); s != e {
		t.Errorf("selection not collapsed: [%d,%d)", s, e)
	}
}

func TestSelectionClampsAtStart(t *testing.T) {
	d := New("ab")
	for range 5 {
		press(t, d, keys.Left, keys.ModShift)
	}
	if s, e := d.Selection(); s != 0 || e != 2 {
		t.Errorf("selection = [%d,%d), want [0,2)", s, e)
	}
}

func TestCopyWithoutSelectionKeepsClipboard(t *testing.T) {
	d := New("abc")
	d.SetClipboard("keep")
	press(t, d, keys.C, keys.ModPrimary)
	if text, _ := d.Clipboard(); text != "keep" {
		t.Errorf("clipboard = %q", text)
	}
}

func TestPasteReturnDelete(t *testing.T) {
	d := New("x")
	d.SetClipboard("yz")
	press(t, d, keys.Return, keys.ModShift)
	press(t, d, keys.V, keys.ModPrimary)
	if got := d.Text(); got != "x\nyz" {
		t.Fatalf("text = %q", got)
	}
	for range 3 {
		press(t, d, keys.Delete, 0)
	}
	if got := d.Text(); got != "x" {
		t.Errorf("text after deletes = %q", got)
	}
	press(t, d, keys.Delete, 0)
	press(t, d, keys.Delete, 0)
	if got := d.Text(); got != "" {
		t.Errorf("text = %q, want empty", got)
	}
	if d.Count(keys.Delete, 0) != 5 {
		t.Errorf("Count(Delete) = %d", d.Count(keys.Delete, 0))
	}
}

func TestStaleReads(t *testing.T) {
	d := New("")
	d.SetClipboard("old")
	d.SetStaleReads(2)
	if err := d.WriteText("new"); err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		if text, _, _ := d.ReadText(); text != "old" {
			t.Fatalf("read %d = %q, want stale value", i, text)
		}
	}
	if text, _, _ := d.ReadText(); text != "new" {
		t.Errorf("read after lag = %q", text)
	}
}

func TestCopyLag(t *testing.T) {
	d := New("abc")
	d.SetClipboard("old")
	d.SetCopyLag(1)
	press(t, d, keys.Left, keys.ModShift)
	press(t, d, keys.C, keys.ModPrimary)
	if text, _, _ := d.ReadText(); text != "old" {
		t.Fatalf("first read = %q, want the pre-copy value", text)
	}
	if text, _, _ := d.ReadText(); text != "c" {
		t.Errorf("read after lag = %q, want c", text)
	}
}

func TestFailPress(t *testing.T) {
	d := New("abc")
	boom := errors.New("boom")
	d.FailPress(2, boom)

	press(t, d, keys.Left, 0)
	if err := d.Press(keys.Left, 0, 0); !errors.Is(err, boom) {
		t.Fatalf("second press err = %v", err)
	}
	press(t, d, keys.Left, 0)
	if len(d.Presses()) != 2 {
		t.Errorf("recorded %d presses, want 2", len(d.Presses()))
	}
	if d.Caret() != 1 {
		t.Errorf("caret = %d, want 1", d.Caret())
	}
}

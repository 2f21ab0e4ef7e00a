// Package simdesk simulates a focused text field and the clipboard it shares
// with the rest of the desktop. A Desk is both a keys.Sink and a
// clip.Backend, so a ghost session can run end to end without touching the
// real input stream. `ghostkey serve --simulate` uses it for host
// integration testing.
//
// Editing follows macOS text field conventions: Shift+arrows extend the
// selection from a fixed anchor, a plain arrow with a selection collapses it
// to the corresponding end, Primary+C copies only a non-empty selection,
// Primary+V and typed characters replace the selection, and Delete removes
// the selection or one character.
package simdesk

import (
	"sync"
	"time"

	"go.klb.dev/ghostkey/internal/keys"
)

// Press records one synthesized key press.
type Press struct {
	Key  keys.Key
	Mods keys.Modifier
}

// Desk is a simulated text field plus clipboard. The zero value is not
// usable; call New.
type Desk struct {
	mu     sync.Mutex
	text   []rune
	caret  int
	anchor int

	clip   string
	clipOK bool

	// read-back lag after a WriteText
	staleReads int
	copyLag    int
	pending    int
	prev       string
	prevOK     bool
	dropWrites bool

	failIn  int // fail the failIn-th press from now; 0 disables
	failErr error

	presses []Press
}

// New returns a Desk containing text with the caret at its end.
func New(text string) *Desk {
	d := &Desk{}
	d.SetText(text, len([]rune(text)))
	return d
}

// Name implements keys.Sink and clip.Backend.
func (d *Desk) Name() string { return "simulated desk" }

// SetText replaces the field contents and places the caret, clearing any
// selection.
func (d *Desk) SetText(text string, caret int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = []rune(text)
	d.caret = clamp(caret, 0, len(d.text))
	d.anchor = d.caret
}

// Text returns the field contents.
func (d *Desk) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.text)
}

// Caret returns the caret position in runes.
func (d *Desk) Caret() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caret
}

// Selection returns the selected range [start, end).
func (d *Desk) Selection() (start, end int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection()
}

// Presses returns every press recorded so far.
func (d *Desk) Presses() []Press {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Press(nil), d.presses...)
}

// Count returns how many presses of k with exactly mods were recorded.
func (d *Desk) Count(k keys.Key, mods keys.Modifier) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, p := range d.presses {
		if p.Key == k && p.Mods == mods {
			n++
		}
	}
	return n
}

// ResetPresses forgets the recorded presses.
func (d *Desk) ResetPresses() {
	d.mu.Lock()
	d.presses = nil
	d.mu.Unlock()
}

// SetStaleReads makes the next n reads after every WriteText return the
// value from before the write.
func (d *Desk) SetStaleReads(n int) {
	d.mu.Lock()
	d.staleReads = n
	d.mu.Unlock()
}

// SetCopyLag makes the next n reads after every copy return the clipboard
// from before the copy.
func (d *Desk) SetCopyLag(n int) {
	d.mu.Lock()
	d.copyLag = n
	d.mu.Unlock()
}

// DropWrites makes WriteText silently lose its value.
func (d *Desk) DropWrites(drop bool) {
	d.mu.Lock()
	d.dropWrites = drop
	d.mu.Unlock()
}

// FailPress makes the n-th press from now (1-based) return err without
// touching the field.
func (d *Desk) FailPress(n int, err error) {
	d.mu.Lock()
	d.failIn, d.failErr = n, err
	d.mu.Unlock()
}

// Press implements keys.Sink.
func (d *Desk) Press(k keys.Key, mods keys.Modifier, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failIn > 0 {
		d.failIn--
		if d.failIn == 0 {
			return d.failErr
		}
	}
	d.presses = append(d.presses, Press{Key: k, Mods: mods})

	shift := mods&keys.ModShift != 0
	primary := mods&keys.ModPrimary != 0
	switch {
	case k == keys.V && primary:
		if d.clipOK {
			d.insert(d.clip)
		}
	case k == keys.C && primary:
		if s, e := d.selection(); s < e {
			d.prev, d.prevOK = d.clip, d.clipOK
			d.pending = d.copyLag
			d.clip, d.clipOK = string(d.text[s:e]), true
		}
	case k == keys.Return:
		d.insert("\n")
	case k == keys.Delete:
		d.deleteBackward()
	case k == keys.Left:
		d.move(-1, shift)
	case k == keys.Right:
		d.move(1, shift)
	case k == keys.V:
		d.insert(letter('v', shift))
	case k == keys.C:
		d.insert(letter('c', shift))
	}
	return nil
}

// ReadText implements clip.Backend.
func (d *Desk) ReadText() (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending > 0 {
		d.pending--
		return d.prev, d.prevOK, nil
	}
	return d.clip, d.clipOK, nil
}

// WriteText implements clip.Backend.
func (d *Desk) WriteText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropWrites {
		return nil
	}
	d.prev, d.prevOK = d.clip, d.clipOK
	d.pending = d.staleReads
	d.clip, d.clipOK = text, true
	return nil
}

// Clear implements clip.Backend.
func (d *Desk) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clip, d.clipOK = "", false
	d.pending = 0
	return nil
}

// Close implements clip.Backend.
func (d *Desk) Close() {}

// SetClipboard sets the clipboard as another application would, bypassing
// the read-back lag.
func (d *Desk) SetClipboard(text string) {
	d.mu.Lock()
	d.clip, d.clipOK = text, true
	d.pending = 0
	d.mu.Unlock()
}

// Clipboard returns the clipboard as other applications see it.
func (d *Desk) Clipboard() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clip, d.clipOK
}

func (d *Desk) selection() (int, int) {
	if d.anchor < d.caret {
		return d.anchor, d.caret
	}
	return d.caret, d.anchor
}

func (d *Desk) insert(s string) {
	start, end := d.selection()
	ins := []rune(s)
	out := make([]rune, 0, len(d.text)-(end-start)+len(ins))
	out = append(out, d.text[:start]...)
	out = append(out, ins...)
	out = append(out, d.text[end:]...)
	d.text = out
	d.caret = start + len(ins)
	d.anchor = d.caret
}

func (d *Desk) deleteBackward() {
	start, end := d.selection()
	if start == end {
		if start == 0 {
			return
		}
		start--
	}
	d.text = append(d.text[:start], d.text[end:]...)
	d.caret, d.anchor = start, start
}

func (d *Desk) move(dir int, extend bool) {
	if extend {
		d.caret = clamp(d.caret+dir, 0, len(d.text))
		return
	}
	start, end := d.selection()
	switch {
	case start != end && dir < 0:
		d.caret = start
	case start != end:
		d.caret = end
	default:
		d.caret = clamp(d.caret+dir, 0, len(d.text))
	}
	d.anchor = d.caret
}

func letter(r rune, upper bool) string {
	if upper {
		r -= 'a' - 'A'
	}
	return string(r)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

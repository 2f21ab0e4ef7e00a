//go:build linux && cgo

package clip

import "golang.design/x/clipboard"

const systemName = "Linux X11 clipboard"

// X11 has no "clear" request; owning the selection with empty text is the
// closest equivalent and reads back as empty.
func platformClear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

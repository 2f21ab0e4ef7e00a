//go:build windows

package clip

import "golang.design/x/clipboard"

const systemName = "Windows Clipboard"

// An empty write makes golang.design call EmptyClipboard.
func platformClear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

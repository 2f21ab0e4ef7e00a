//go:build darwin && cgo

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger ghostkey_clear_contents() {
//     return [[NSPasteboard generalPasteboard] clearContents];
// }
import "C"

const systemName = "macOS NSPasteboard"

// platformClear drops every representation on the general pasteboard, not
// just text, the same way the paste path does before writing.
func platformClear() error {
	C.ghostkey_clear_contents()
	return nil
}

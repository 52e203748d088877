package tui

import "github.com/oakwood-commons/gridx/internal/ui"

// CopyToClipboard copies text to the system clipboard using platform-specific
// commands (pbcopy on macOS, xclip/xsel/wl-copy on Linux, clip on Windows).
func CopyToClipboard(text string) error {
	return ui.CopyToClipboard(text)
}

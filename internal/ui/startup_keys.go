package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// updater is any Bubble Tea model updated in place.
type updater interface {
	Update(tea.Msg) (tea.Model, tea.Cmd)
}

// ApplyStartupKeys feeds keypresses to m before it is shown. Tokens use Vim
// notation ("<CR>", "<Esc>", "<Space>", "<Down>") mixed with literal text; a
// leading backslash makes the whole token literal.
func ApplyStartupKeys(m updater, keys []string) {
	if m == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			sendText(m, strings.TrimPrefix(token, `\`))
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isVimKey {
				sendText(m, seg.text)
				continue
			}
			if msgs, ok := keyMsgsFromToken(seg.text); ok {
				for _, msg := range msgs {
					m.Update(msg)
				}
			}
		}
	}
}

func sendText(m updater, text string) {
	for _, r := range text {
		if r == ' ' {
			m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
			continue
		}
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits "<Down>abc<CR>" into key and text segments. An
// unclosed "<" makes the rest literal.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		start := strings.Index(remaining, "<")
		if start == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if start > 0 {
			segments = append(segments, tokenSegment{text: remaining[:start]})
		}
		end := strings.Index(remaining[start:], ">")
		if end == -1 {
			segments = append(segments, tokenSegment{text: remaining[start:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[start : start+end+1], isVimKey: true})
		remaining = remaining[start+end+1:]
	}
	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pageup":    {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"c-c":       {Code: 'c', Mod: tea.ModCtrl},
	"c-r":       {Code: 'r', Mod: tea.ModCtrl},
}

// keyMsgsFromToken parses one "<...>" token.
func keyMsgsFromToken(token string) ([]tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return nil, false
	}
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	msg, ok := namedKeys[inner]
	if !ok {
		return nil, false
	}
	return []tea.KeyPressMsg{msg}, true
}

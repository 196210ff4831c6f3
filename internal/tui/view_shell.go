package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// shellScreen folds raw PTY output into displayable lines. It is not a
// terminal emulator: escape sequences are stripped, carriage return rewinds
// the current line, and everything else appends. That is enough for shells,
// REPLs and pagers-free command output.
type shellScreen struct {
	lines    []string
	cur      []rune
	maxLines int

	// pendingCR defers the rewind one byte: CR immediately followed by LF
	// is a plain line ending, not an overwrite. The flag survives chunk
	// boundaries.
	pendingCR bool
}

func newShellScreen(maxLines int) *shellScreen {
	if maxLines <= 0 {
		maxLines = 2000
	}
	return &shellScreen{maxLines: maxLines}
}

func (s *shellScreen) reset() {
	s.lines = nil
	s.cur = nil
	s.pendingCR = false
}

func (s *shellScreen) feed(data []byte) {
	text := string(data)
	for i := 0; i < len(text); {
		r := rune(text[i])
		if s.pendingCR {
			s.pendingCR = false
			if r != '\n' {
				s.cur = s.cur[:0]
			}
		}
		if r == 0x1b {
			i += s.skipEscape(text[i:])
			continue
		}
		switch r {
		case '\n':
			s.pushLine()
			i++
		case '\r':
			s.pendingCR = true
			i++
		case '\b':
			if len(s.cur) > 0 {
				s.cur = s.cur[:len(s.cur)-1]
			}
			i++
		case '\t':
			for pad := 8 - len(s.cur)%8; pad > 0; pad-- {
				s.cur = append(s.cur, ' ')
			}
			i++
		case 0x07: // bell
			i++
		default:
			if r < 0x20 {
				i++
				continue
			}
			rr, width := utf8.DecodeRuneInString(text[i:])
			s.cur = append(s.cur, rr)
			i += width
		}
	}
}

// skipEscape returns how many bytes the escape sequence starting at text[0]
// occupies. CSI runs to its final byte, OSC to BEL or ST, anything else is
// a two-byte sequence.
func (s *shellScreen) skipEscape(text string) int {
	if len(text) < 2 {
		return len(text)
	}
	switch text[1] {
	case '[':
		for i := 2; i < len(text); i++ {
			if text[i] >= 0x40 && text[i] <= 0x7e {
				return i + 1
			}
		}
		return len(text)
	case ']':
		for i := 2; i < len(text); i++ {
			if text[i] == 0x07 {
				return i + 1
			}
			if text[i] == 0x1b && i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		return len(text)
	default:
		return 2
	}
}

func (s *shellScreen) pushLine() {
	s.lines = append(s.lines, string(s.cur))
	s.cur = s.cur[:0]
	if len(s.lines) > s.maxLines {
		s.lines = s.lines[len(s.lines)-s.maxLines:]
	}
}

// tail returns the last n display lines including the one being typed.
func (s *shellScreen) tail(n int) []string {
	all := s.lines
	if len(s.cur) > 0 || len(all) == 0 {
		all = append(append([]string(nil), s.lines...), string(s.cur))
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func renderShell(screen *shellScreen, pod, container string, ended bool, width, viewHeight int) string {
	var b strings.Builder

	title := fmt.Sprintf("  Shell: %s", pod)
	if container != "" {
		title = fmt.Sprintf("  Shell: %s (%s)", pod, container)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	usable := width - 2
	if usable < 1 {
		usable = 1
	}
	for _, line := range screen.tail(viewHeight) {
		b.WriteString("  ")
		b.WriteString(truncate(line, usable))
		b.WriteString("\n")
	}
	if ended {
		b.WriteString(tabInactiveStyle.Render("  [session ended]"))
		b.WriteString("\n")
	}

	return b.String()
}

func shellHelpKeys() string {
	return "Ctrl+Q:Close shell"
}

// keyToBytes translates a key press into the byte sequence the remote PTY
// expects. Unmapped keys translate to nothing.
func keyToBytes(msg tea.KeyMsg) []byte {
	var out []byte
	if msg.Alt {
		out = append(out, 0x1b)
	}
	switch msg.Type {
	case tea.KeyRunes:
		return append(out, []byte(string(msg.Runes))...)
	case tea.KeySpace:
		return append(out, ' ')
	case tea.KeyBackspace:
		return append(out, 0x7f)
	case tea.KeyUp:
		return append(out, 0x1b, '[', 'A')
	case tea.KeyDown:
		return append(out, 0x1b, '[', 'B')
	case tea.KeyRight:
		return append(out, 0x1b, '[', 'C')
	case tea.KeyLeft:
		return append(out, 0x1b, '[', 'D')
	case tea.KeyHome:
		return append(out, 0x1b, '[', 'H')
	case tea.KeyEnd:
		return append(out, 0x1b, '[', 'F')
	case tea.KeyDelete:
		return append(out, 0x1b, '[', '3', '~')
	case tea.KeyPgUp:
		return append(out, 0x1b, '[', '5', '~')
	case tea.KeyPgDown:
		return append(out, 0x1b, '[', '6', '~')
	}
	// Control characters (ctrl+a..z, enter, tab, esc) carry their byte value
	// in the key type.
	if msg.Type >= 0 && msg.Type < 32 {
		return append(out, byte(msg.Type))
	}
	return nil
}

package tui

import (
	"fmt"
	"strings"
)

// containerTarget remembers why the selector is open: the action to run once
// a container is picked.
type containerTarget int

const (
	containerForLogs containerTarget = iota
	containerForShell
)

type containerSelector struct {
	pod     string
	choices []string
	cursor  int
	target  containerTarget
	active  bool
}

func (c *containerSelector) open(pod string, choices []string, target containerTarget) {
	c.pod = pod
	c.choices = choices
	c.cursor = 0
	c.target = target
	c.active = true
}

func (c *containerSelector) close() {
	c.choices = nil
	c.active = false
}

func (c *containerSelector) moveUp() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *containerSelector) moveDown() {
	if c.cursor < len(c.choices)-1 {
		c.cursor++
	}
}

func (c *containerSelector) choice() string {
	if c.cursor < len(c.choices) {
		return c.choices[c.cursor]
	}
	return ""
}

func (c *containerSelector) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Container in %s", c.pod)))
	b.WriteString("\n\n")
	for i, name := range c.choices {
		if i == c.cursor {
			b.WriteString(selectedStyle.Render(">> " + name))
		} else {
			b.WriteString("   " + name)
		}
		b.WriteString("\n")
	}
	return modalBoxStyle.Width(min(width-4, 50)).Render(b.String())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	countStyle   = lipgloss.NewStyle().Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Messenger shows user-facing messages and the record count.
type Messenger struct {
	w io.Writer
}

// NewMessenger creates a Messenger writing to w.
func NewMessenger(w io.Writer) *Messenger {
	return &Messenger{w: w}
}

// Message shows a one-line notice.
func (m *Messenger) Message(text string) {
	fmt.Fprintln(m.w, messageStyle.Render(text))
}

// Count shows the number of imported records.
func (m *Messenger) Count(n int) {
	fmt.Fprintln(m.w, countStyle.Render(fmt.Sprintf("Total Records: %d", n)))
}

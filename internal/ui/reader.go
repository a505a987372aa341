package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"sitesearch/internal/domain"
)

// Reader shows a document the user navigated to
type Reader interface {
	Open(doc domain.Document, url string) error
}

// PagerReader shows documents in the ov pager
type PagerReader struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
	width   int
}

// NewPagerReader creates a new pager reader
func NewPagerReader() *PagerReader {
	return &PagerReader{width: 80}
}

// SetProgram sets the program reference for terminal management
func (r *PagerReader) SetProgram(p *tea.Program) {
	r.program = p
}

// SetWidth sets the wrap width for document bodies
func (r *PagerReader) SetWidth(width int) {
	if width > 0 {
		r.width = width
	}
}

// Open releases the terminal and pages the document until the user quits ov
func (r *PagerReader) Open(doc domain.Document, url string) error {
	if r.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := r.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Give ov time to restore the screen before Bubble Tea takes over
		time.Sleep(100 * time.Millisecond)
		_ = r.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(FormatDocument(doc, url, r.width)))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// FormatDocument renders a document for reading
func FormatDocument(doc domain.Document, url string, width int) string {
	if width <= 0 {
		width = 80
	}
	title := doc.Title
	if title == "" {
		title = url
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	urlStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	bodyStyle := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(urlStyle.Render(url))
	b.WriteString("\n\n")
	if strings.TrimSpace(doc.Body) == "" {
		b.WriteString("(no stored content)")
	} else {
		b.WriteString(bodyStyle.Render(strings.TrimSpace(doc.Body)))
	}
	b.WriteString("\n")
	return b.String()
}

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"sitesearch/internal/page"
)

const (
	mainPadTop  = 1
	searchRows  = 3 // bordered single line
	panelBorder = 1
)

// screenLayout records which terminal rows hold which part of the page
type screenLayout struct {
	searchTop   int
	panelTop    int
	panelBottom int
	firstRow    int
	rows        int
	panelShown  bool
}

func (l screenLayout) inSearchBox(y int) bool {
	return y >= l.searchTop && y < l.searchTop+searchRows
}

func (l screenLayout) inPanel(y int) bool {
	return l.panelShown && y >= l.panelTop && y <= l.panelBottom
}

// resultRow maps a screen row to a result index, -1 when it hits no row
func (l screenLayout) resultRow(y int) int {
	row := y - l.firstRow
	if row < 0 || row >= l.rows {
		return -1
	}
	return row
}

func (m *Model) layout() screenLayout {
	// title line, blank line, then the search box
	l := screenLayout{searchTop: mainPadTop + 2}
	if !m.panelVisible() {
		return l
	}
	rows := 0
	if m.list != nil {
		rows = len(m.list.Children())
	}
	l.panelShown = true
	l.panelTop = l.searchTop + searchRows
	l.firstRow = l.panelTop + panelBorder
	l.rows = rows
	l.panelBottom = l.firstRow + rows
	return l
}

// View renders the model
func (m *Model) View() string {
	var b strings.Builder
	width := m.searchWidth()

	title := m.styles.Title.Render("sitesearch")
	if m.source != "" {
		title += m.styles.Dim.Render("  " + m.source)
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	box := m.styles.SearchBox
	if m.input != nil && m.input.Focused() {
		box = m.styles.SearchFocus
	}
	b.WriteString(box.Width(width - 2).Render(m.textBox.View()))
	b.WriteString("\n")

	if m.panelVisible() {
		b.WriteString(m.renderPanel(width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := m.styles.StatusError
	if m.statusOK {
		status = m.styles.StatusOK
	}
	if m.reading {
		status = m.styles.Status
	}
	b.WriteString(status.Render(runewidth.Truncate(m.status, width, "...")))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return m.styles.Main.Render(b.String())
}

func (m *Model) renderPanel(width int) string {
	inner := width - 4
	var lines []string
	links := 0
	for _, item := range m.list.Children() {
		if item.HasClass(page.NoResultsClass) {
			lines = append(lines, m.styles.NoResults.Render(runewidth.Truncate(item.Text, inner, "...")))
			continue
		}
		for _, link := range item.Children() {
			if link.Tag != "a" {
				continue
			}
			lines = append(lines, m.renderResult(link, links == m.selected, inner))
			links++
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return m.styles.Panel.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResult(link *page.Element, active bool, width int) string {
	score := ""
	if m.config != nil && m.config.UI.ShowScores {
		if s, ok := link.Attr("data-score"); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				score = fmt.Sprintf(" %.2f", f)
			}
		}
	}

	title := link.Text
	url := link.Href
	avail := width - runewidth.StringWidth(score) - 4
	if avail < 1 {
		avail = 1
	}
	title = runewidth.Truncate(title, avail, "...")
	url = runewidth.Truncate(url, avail-runewidth.StringWidth(title), "...")

	line := title + "  " + m.styles.URL.Render(url)
	if score != "" {
		line += m.styles.Score.Render(score)
	}
	if active {
		return m.styles.ItemActive.Render("> " + title + "  " + url + score)
	}
	return m.styles.Item.Render("  ") + line
}

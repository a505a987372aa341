package ui

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sitesearch/internal/config"
	"sitesearch/internal/eventbus"
	"sitesearch/internal/page"
	"sitesearch/internal/widget"
)

// Model hosts the search page in the terminal. Keystrokes and clicks are
// translated into page events; the widget bound to the page does the rest.
type Model struct {
	config *config.Config
	doc    *page.Document
	widget *widget.Widget
	reader Reader

	input    *page.Element
	panel    *page.Element
	list     *page.Element
	textBox  textinput.Model
	help     help.Model
	keys     keyMap
	styles   *Styles
	source   string
	width    int
	height   int
	selected int // highlighted result row, -1 for none
	visited  int // navigations already handled
	status   string
	statusOK bool
	reading  bool
}

// NewModel creates the UI model for doc. The widget must be bound to doc.
func NewModel(cfg *config.Config, doc *page.Document, w *widget.Widget, reader Reader, source string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search posts..."
	ti.Prompt = ""
	ti.CharLimit = 256

	m := &Model{
		config:   cfg,
		doc:      doc,
		widget:   w,
		reader:   reader,
		input:    doc.GetElementByID(page.SearchInputID),
		panel:    doc.GetElementByID(page.SearchResultsID),
		list:     doc.GetElementByID(page.SearchListID),
		textBox:  ti,
		help:     help.New(),
		keys:     newKeyMap(),
		styles:   NewStyles(),
		source:   source,
		selected: -1,
		status:   "Loading search index...",
	}
	return m
}

// InitRunFunc returns a scheduler run function that performs initialization
// attempts on the program's update goroutine
func InitRunFunc(p *tea.Program) widget.RunFunc {
	return func(ctx context.Context, fn func() bool) bool {
		reply := make(chan bool, 1)
		go p.Send(initRequestMsg{run: fn, reply: reply})
		select {
		case ok := <-reply:
			return ok
		case <-ctx.Done():
			return false
		}
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.textBox.Width = m.searchWidth() - 12
		if sizer, ok := m.reader.(interface{ SetWidth(int) }); ok {
			sizer.SetWidth(msg.Width)
		}
		return m, nil

	case initRequestMsg:
		ok := msg.run()
		msg.reply <- ok
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case readerDoneMsg:
		m.reading = false
		if msg.err != nil {
			log.Printf("Reader failed for %s: %v", msg.url, msg.err)
			m.setStatus(fmt.Sprintf("Could not open %s: %v", msg.url, msg.err), false)
		}
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.input == nil {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return nil
	}

	if !m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return nil
		case key.Matches(msg, m.keys.Focus):
			return m.focusInput()
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.moveSelection(msg)
			return nil
		case key.Matches(msg, m.keys.Submit):
			if m.selected >= 0 {
				m.followSelected()
				return m.afterPageEvent()
			}
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.input.KeyDown(page.KeyEscape)
		m.selected = -1
		return m.afterPageEvent()

	case tea.KeyEnter:
		if m.selected >= 0 && m.panelVisible() {
			m.followSelected()
		} else {
			m.input.KeyDown(page.KeyEnter)
		}
		return m.afterPageEvent()

	case tea.KeyTab:
		m.input.Blur()
		return m.afterPageEvent()

	case tea.KeyUp, tea.KeyDown, tea.KeyCtrlP, tea.KeyCtrlN:
		m.moveSelection(msg)
		return nil
	}

	before := m.textBox.Value()
	var cmd tea.Cmd
	m.textBox, cmd = m.textBox.Update(msg)
	if value := m.textBox.Value(); value != before {
		m.selected = -1
		m.input.Type(value)
	}
	return tea.Batch(cmd, m.afterPageEvent())
}

func (m *Model) focusInput() tea.Cmd {
	m.input.Focus()
	return tea.Batch(m.textBox.Focus(), m.afterPageEvent())
}

// afterPageEvent mirrors page state into the terminal widgets and opens the
// reader when the page navigated
func (m *Model) afterPageEvent() tea.Cmd {
	if m.input.Focused() && !m.textBox.Focused() {
		m.textBox.Focus()
	} else if !m.input.Focused() && m.textBox.Focused() {
		m.textBox.Blur()
	}
	if !m.panelVisible() {
		m.selected = -1
	}
	if n := len(m.resultLinks()); m.selected >= n {
		m.selected = n - 1
	}

	history := m.doc.History()
	if len(history) == m.visited {
		return nil
	}
	m.visited = len(history)
	url := history[len(history)-1]
	m.setStatus("Opened "+url, true)
	return m.openReader(url)
}

func (m *Model) openReader(url string) tea.Cmd {
	if m.reader == nil || m.config == nil || !m.config.UI.OpenPager {
		return nil
	}
	ref := url
	for _, link := range m.resultLinks() {
		if link.Href == url {
			if r, ok := link.Attr("data-ref"); ok {
				ref = r
			}
			break
		}
	}
	doc, _ := m.widget.Document(ref)
	if doc.Ref == "" {
		doc.Ref = ref
	}

	m.reading = true
	reader := m.reader
	return func() tea.Msg {
		return readerDoneMsg{url: url, err: reader.Open(doc, url)}
	}
}

// followSelected navigates to the highlighted result the way clicking the
// link would
func (m *Model) followSelected() {
	links := m.resultLinks()
	if m.selected < 0 || m.selected >= len(links) {
		return
	}
	href := links[m.selected].Href
	m.panel.AddClass(page.HiddenClass)
	m.doc.Navigate(href)
	m.selected = -1
}

func (m *Model) moveSelection(msg tea.KeyMsg) {
	n := len(m.resultLinks())
	if n == 0 || !m.panelVisible() {
		m.selected = -1
		return
	}
	if key.Matches(msg, m.keys.Up) {
		m.selected--
		if m.selected < 0 {
			m.selected = n - 1
		}
		return
	}
	m.selected = (m.selected + 1) % n
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.input == nil {
		return nil
	}

	l := m.layout()
	switch {
	case l.inSearchBox(msg.Y):
		m.doc.Click(m.input)
		return m.focusInput()
	case l.inPanel(msg.Y):
		m.doc.Click(m.list)
		if row := l.resultRow(msg.Y); row >= 0 && row < len(m.resultLinks()) {
			m.selected = row
			m.followSelected()
		}
		return m.afterPageEvent()
	default:
		m.doc.Click(nil)
		return m.afterPageEvent()
	}
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch event := e.(type) {
	case eventbus.SearchInitializedEvent:
		m.setStatus(fmt.Sprintf("Search ready: %d documents", event.Documents), true)
	case eventbus.SearchInitFailedEvent:
		m.setStatus(fmt.Sprintf("Search unavailable (attempt %d): %s", event.Attempt, event.Message), false)
	case eventbus.InitRetryScheduledEvent:
		m.setStatus(fmt.Sprintf("Retrying search initialization in %dms...", event.DelayMs), false)
	case eventbus.IndexReadyEvent:
		m.setStatus("Index available, loading...", true)
	case eventbus.SearchFailedEvent:
		m.setStatus(fmt.Sprintf("Search failed for %q", event.Query), false)
	case eventbus.ErrorEvent:
		m.setStatus(event.Message, false)
	}
}

func (m *Model) setStatus(s string, ok bool) {
	m.status = s
	m.statusOK = ok
}

func (m *Model) panelVisible() bool {
	return m.panel != nil && !m.panel.HasClass(page.HiddenClass)
}

// resultLinks returns the anchor of every rendered result item
func (m *Model) resultLinks() []*page.Element {
	if m.list == nil {
		return nil
	}
	var links []*page.Element
	for _, item := range m.list.Children() {
		if !item.HasClass(page.ResultItemClass) {
			continue
		}
		for _, child := range item.Children() {
			if child.Tag == "a" {
				links = append(links, child)
			}
		}
	}
	return links
}

func (m *Model) searchWidth() int {
	if m.width <= 0 {
		return 80
	}
	w := m.width - 4
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	return w
}

// Package widget binds a search box on a page to a loaded search index.
//
// A Widget owns two pieces of state: whether it has been initialized and
// the loaded index. Initialize may be called any number of times; every
// successful call replaces the index and re-registers the page listeners
// exactly once. The query pipeline never surfaces faults to the page: any
// failure ends up as the "No results found" placeholder and a log line.
package widget

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"sitesearch/internal/domain"
	"sitesearch/internal/eventbus"
	"sitesearch/internal/index"
	"sitesearch/internal/page"
)

// Searcher is the loaded index as seen by the widget
type Searcher interface {
	Search(query string, opts index.SearchOptions) ([]domain.ResultEntry, error)
}

// Loader deserializes an index
type Loader func(*index.Serialized) (Searcher, error)

// LoadIndex is the default Loader backed by index.Load
func LoadIndex(s *index.Serialized) (Searcher, error) {
	idx, err := index.Load(s)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Options configures the query pipeline
type Options struct {
	MinQueryLength int
	MaxResults     int
	Search         index.SearchOptions
	URLs           URLRules
}

// DefaultOptions matches the site's search box: two characters minimum,
// eight results, title weighted twice as high as body, OR matching
func DefaultOptions() Options {
	return Options{
		MinQueryLength: domain.MinQueryLength,
		MaxResults:     domain.MaxResults,
		Search:         index.DefaultSearchOptions(),
		URLs:           DefaultURLRules(),
	}
}

// Widget is the search box controller
type Widget struct {
	doc    *page.Document
	source index.Source
	bus    eventbus.EventBus
	opts   Options
	load   Loader

	mu          sync.RWMutex
	initialized bool
	index       Searcher
	attempts    int

	input  *page.Element
	panel  *page.Element
	list   *page.Element
	unbind []func()
}

// New creates a widget for doc reading its index from source. bus may be nil.
func New(doc *page.Document, source index.Source, bus eventbus.EventBus, opts Options) *Widget {
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = domain.MinQueryLength
	}
	if opts.MaxResults <= 0 || opts.MaxResults > domain.MaxResults {
		opts.MaxResults = domain.MaxResults
	}
	if len(opts.Search.Fields) == 0 {
		opts.Search.Fields = index.DefaultSearchOptions().Fields
	}
	if opts.Search.Bool == "" {
		opts.Search.Bool = index.BoolOR
	}
	opts.Search.Limit = opts.MaxResults

	return &Widget{
		doc:    doc,
		source: source,
		bus:    bus,
		opts:   opts,
		load:   LoadIndex,
	}
}

// SetLoader replaces the function used to deserialize the index
func (w *Widget) SetLoader(fn Loader) {
	w.load = fn
}

// Initialize locates the search elements, loads the index and binds the
// page listeners. It returns false, leaving any earlier binding in place,
// when the elements or the index are missing or the index fails to load.
func (w *Widget) Initialize() bool {
	w.mu.Lock()
	w.attempts++
	attempt := w.attempts
	w.mu.Unlock()

	log.Printf("Initializing search (attempt %d)...", attempt)

	input := w.doc.GetElementByID(page.SearchInputID)
	panel := w.doc.GetElementByID(page.SearchResultsID)
	list := w.doc.GetElementByID(page.SearchListID)
	if input == nil || panel == nil || list == nil {
		msg := fmt.Sprintf("search elements not found: searchInput=%t searchResults=%t searchResultsList=%t",
			input != nil, panel != nil, list != nil)
		log.Printf("Search init failed: %s", msg)
		w.publishInitFailed(domain.InitMissingElements, msg, attempt)
		return false
	}

	serialized, err := w.source.Serialized()
	if err != nil {
		msg := fmt.Sprintf("index from %s not available: %v", w.source.Name(), err)
		log.Printf("Search init failed: %s", msg)
		reason := domain.InitMissingIndex
		if !index.IsNotAvailable(err) {
			reason = domain.InitLoadFailed
		}
		w.publishInitFailed(reason, msg, attempt)
		return false
	}

	loaded, err := w.safeLoad(serialized)
	if err != nil {
		msg := fmt.Sprintf("failed to load search index: %v", err)
		log.Printf("Search init failed: %s", msg)
		w.publishInitFailed(domain.InitLoadFailed, msg, attempt)
		return false
	}
	log.Printf("Search index loaded successfully")

	w.mu.Lock()
	previous := w.index
	w.index = loaded
	w.mu.Unlock()
	if c, ok := previous.(io.Closer); ok && previous != loaded {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close previous search index: %v", err)
		}
	}

	w.bind(input, panel, list)

	w.mu.Lock()
	w.initialized = true
	w.mu.Unlock()

	docs := 0
	if s, ok := loaded.(interface{ Len() int }); ok {
		docs = s.Len()
	}
	log.Printf("Search initialized successfully (%d documents)", docs)
	if w.bus != nil {
		w.bus.Publish(eventbus.SearchInitializedEvent{Documents: docs, Attempt: attempt})
	}
	return true
}

// Reinitialize re-runs Initialize
func (w *Widget) Reinitialize() bool {
	return w.Initialize()
}

// IsInitialized reports whether an initialization has succeeded
func (w *Widget) IsInitialized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.initialized
}

// HasIndex reports whether an index is loaded
func (w *Widget) HasIndex() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.index != nil
}

// Attempts returns how many times Initialize ran
func (w *Widget) Attempts() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.attempts
}

// Document returns the stored document for ref when the loaded index keeps
// documents
func (w *Widget) Document(ref string) (domain.Document, bool) {
	w.mu.RLock()
	idx := w.index
	w.mu.RUnlock()

	if store, ok := idx.(interface {
		Document(string) (domain.Document, bool)
	}); ok {
		return store.Document(ref)
	}
	return domain.Document{}, false
}

// Close removes the page listeners and releases the index
func (w *Widget) Close() error {
	w.teardown()

	w.mu.Lock()
	idx := w.index
	w.index = nil
	w.initialized = false
	w.mu.Unlock()

	if c, ok := idx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (w *Widget) safeLoad(s *index.Serialized) (loaded Searcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index loader panicked: %v", r)
		}
	}()
	loaded, err = w.load(s)
	if err == nil && loaded == nil {
		err = fmt.Errorf("index loader returned no index")
	}
	return loaded, err
}

func (w *Widget) publishInitFailed(reason domain.InitFailureReason, msg string, attempt int) {
	if w.bus != nil {
		w.bus.Publish(eventbus.SearchInitFailedEvent{Reason: reason, Message: msg, Attempt: attempt})
	}
}

// bind registers the page listeners, removing any registered by an earlier
// initialization first
func (w *Widget) bind(input, panel, list *page.Element) {
	w.teardown()

	w.input, w.panel, w.list = input, panel, list
	w.unbind = []func(){
		input.AddEventListener(page.EventInput, w.onInput),
		input.AddEventListener(page.EventKeyDown, w.onKeyDown),
		input.AddEventListener(page.EventFocus, w.onFocus),
		w.doc.AddEventListener(page.EventClick, w.onDocumentClick),
	}
	log.Printf("Event listeners attached")
}

func (w *Widget) teardown() {
	for _, remove := range w.unbind {
		remove()
	}
	w.unbind = nil
}

func (w *Widget) query() string {
	return strings.TrimSpace(w.input.Value())
}

func (w *Widget) isActive(q string) bool {
	return domain.IsActiveQuery(q, w.opts.MinQueryLength)
}

func (w *Widget) onInput(*page.Event) {
	q := w.query()
	if !w.isActive(q) {
		w.hidePanel()
		return
	}
	w.DisplayResults(w.PerformSearch(q))
	w.showPanel()
}

func (w *Widget) onKeyDown(ev *page.Event) {
	q := w.query()

	if ev.Key == page.KeyEnter && w.isActive(q) {
		ev.PreventDefault()

		results := w.PerformSearch(q)
		if len(results) > 0 {
			url := w.opts.URLs.ConvertToRelativeURL(results[0].Ref)
			w.hidePanel()
			w.navigate(results[0].Ref, url)
		}
	}

	if ev.Key == page.KeyEscape {
		w.hidePanel()
		w.input.Blur()
	}
}

func (w *Widget) onFocus(*page.Event) {
	q := w.query()
	if w.isActive(q) {
		w.DisplayResults(w.PerformSearch(q))
		w.showPanel()
	}
}

func (w *Widget) onDocumentClick(ev *page.Event) {
	if ev.Target == nil || ev.Target.Closest(page.SearchContainer) == nil {
		w.hidePanel()
	}
}

func (w *Widget) navigate(ref, url string) {
	log.Printf("Navigating to %s", url)
	w.doc.Navigate(url)
	if w.bus != nil {
		w.bus.Publish(eventbus.NavigatedEvent{Ref: ref, URL: url})
	}
}

func (w *Widget) showPanel() { w.panel.RemoveClass(page.HiddenClass) }

func (w *Widget) hidePanel() { w.panel.AddClass(page.HiddenClass) }

// PerformSearch queries the index. Short queries, a missing index and any
// fault inside the index yield no results.
func (w *Widget) PerformSearch(q string) (results []domain.ResultEntry) {
	q = strings.TrimSpace(q)

	w.mu.RLock()
	idx := w.index
	w.mu.RUnlock()

	if !w.isActive(q) || idx == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Search error: %v", r)
			w.publishSearchFailed(q, fmt.Errorf("index panicked: %v", r))
			results = nil
		}
	}()

	results, err := idx.Search(q, w.opts.Search)
	if err != nil {
		log.Printf("Search error: %v", err)
		w.publishSearchFailed(q, err)
		return nil
	}
	if len(results) > w.opts.MaxResults {
		results = results[:w.opts.MaxResults]
	}

	if w.bus != nil {
		w.bus.Publish(eventbus.SearchPerformedEvent{Query: q, Results: len(results)})
	}
	return results
}

func (w *Widget) publishSearchFailed(q string, err error) {
	if w.bus != nil {
		w.bus.Publish(eventbus.SearchFailedEvent{Query: q, Err: err})
	}
}

// DisplayResults replaces the result list with one link per result, or the
// "No results found" placeholder
func (w *Widget) DisplayResults(results []domain.ResultEntry) {
	if w.list == nil {
		return
	}
	w.list.ClearChildren()

	if len(results) == 0 {
		placeholder := page.NewElement("div", "", page.NoResultsClass)
		placeholder.Text = page.NoResultsText
		w.list.AppendChild(placeholder)
		return
	}

	for _, result := range results {
		item := page.NewElement("div", "", page.ResultItemClass)
		link := page.NewElement("a", "")
		link.Href = w.opts.URLs.ConvertToRelativeURL(result.Ref)
		link.Text = GetTitle(result.Ref)
		link.SetAttr("data-ref", result.Ref)
		link.SetAttr("data-score", strconv.FormatFloat(result.Score, 'f', 3, 64))
		item.AppendChild(link)
		w.list.AppendChild(item)
	}
}

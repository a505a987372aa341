package page

// Element ids and classes of the search markup
const (
	SearchInputID   = "search"
	SearchResultsID = "search-results"
	SearchListID    = "search-results-list"
	SearchContainer = "search-container"
	HiddenClass     = "hidden"
	ResultItemClass = "search-result-item"
	NoResultsClass  = "no-results"
	NoResultsText   = "No results found"
)

// NewSearchPage builds the markup the search widget expects:
//
//	body
//	└── div.search-container
//	    ├── input#search
//	    └── div#search-results.hidden
//	        └── div#search-results-list
func NewSearchPage() *Document {
	doc := NewDocument()

	container := NewElement("div", "", SearchContainer)
	input := NewElement("input", SearchInputID)
	results := NewElement("div", SearchResultsID, HiddenClass)
	list := NewElement("div", SearchListID)

	results.AppendChild(list)
	container.AppendChild(input)
	container.AppendChild(results)
	doc.Body.AppendChild(container)

	return doc
}

// Type replaces the value of e and dispatches an input event
func (e *Element) Type(value string) {
	e.value = value
	e.Dispatch(&Event{Type: EventInput})
}

// KeyDown dispatches a keydown event for key and reports whether a listener
// prevented the default action
func (e *Element) KeyDown(key string) bool {
	ev := &Event{Type: EventKeyDown, Key: key}
	e.Dispatch(ev)
	return ev.DefaultPrevented()
}

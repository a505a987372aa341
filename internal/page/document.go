package page

// Document is the root of a page. It indexes attached elements by id,
// tracks focus and records navigation.
type Document struct {
	Body *Element

	byID     map[string]*Element
	active   *Element
	ls       listeners
	location string
	history  []string
}

// NewDocument creates an empty document with a body element
func NewDocument() *Document {
	d := &Document{byID: make(map[string]*Element)}
	d.Body = NewElement("body", "")
	d.Body.doc = d
	return d
}

// GetElementByID returns the attached element with id, or nil
func (d *Document) GetElementByID(id string) *Element {
	return d.byID[id]
}

// AddEventListener registers a document-level listener. Click events on any
// attached element reach document listeners after the element's own.
func (d *Document) AddEventListener(t EventType, fn Listener) func() {
	return d.ls.add(t, fn)
}

// ListenerCount returns how many document listeners of type t exist
func (d *Document) ListenerCount(t EventType) int {
	return d.ls.count(t)
}

// Click dispatches a click originating at target. A nil target is a click on
// the body.
func (d *Document) Click(target *Element) {
	if target == nil {
		target = d.Body
	}
	target.Dispatch(&Event{Type: EventClick, Target: target})
}

// ActiveElement returns the focused element or nil
func (d *Document) ActiveElement() *Element {
	return d.active
}

// Location returns the current location
func (d *Document) Location() string {
	return d.location
}

// Navigate changes the location and records it in the history
func (d *Document) Navigate(url string) {
	d.location = url
	d.history = append(d.history, url)
}

// History returns every location navigated to, oldest first
func (d *Document) History() []string {
	return append([]string(nil), d.history...)
}

func (d *Document) attach(e *Element) {
	e.doc = d
	if e.ID != "" {
		d.byID[e.ID] = e
	}
	for _, c := range e.children {
		d.attach(c)
	}
}

func (d *Document) detach(e *Element) {
	if d.active == e {
		d.active = nil
	}
	if e.ID != "" && d.byID[e.ID] == e {
		delete(d.byID, e.ID)
	}
	e.doc = nil
	for _, c := range e.children {
		d.detach(c)
	}
}

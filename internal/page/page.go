// Package page is the in-process host the search widget binds to: a small
// element tree with ids, class lists, focus, event listeners that can be
// removed again, and a navigable location.
//
// It is single-threaded. All mutations and dispatches must happen on the
// host's event goroutine.
package page

import "strings"

// EventType names a page event
type EventType string

const (
	EventInput   EventType = "input"
	EventKeyDown EventType = "keydown"
	EventFocus   EventType = "focus"
	EventBlur    EventType = "blur"
	EventClick   EventType = "click"
)

// Key names used by keydown events
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// Event is delivered to listeners
type Event struct {
	Type   EventType
	Key    string   // keydown only
	Target *Element // element the event originated from

	defaultPrevented bool
}

// PreventDefault marks the event as handled
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles a page event
type Listener func(*Event)

type listenerEntry struct {
	id uint64
	fn Listener
}

// listeners is a registry keyed by event type. Removal is by registration
// id so the same func value may be registered more than once.
type listeners struct {
	nextID  uint64
	entries map[EventType][]listenerEntry
}

func (l *listeners) add(t EventType, fn Listener) func() {
	if l.entries == nil {
		l.entries = make(map[EventType][]listenerEntry)
	}
	l.nextID++
	id := l.nextID
	l.entries[t] = append(l.entries[t], listenerEntry{id: id, fn: fn})

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		entries := l.entries[t]
		for i, e := range entries {
			if e.id == id {
				l.entries[t] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) dispatch(ev *Event) {
	// Snapshot so listeners may add or remove listeners while running
	entries := append([]listenerEntry(nil), l.entries[ev.Type]...)
	for _, e := range entries {
		e.fn(ev)
	}
}

func (l *listeners) count(t EventType) int {
	return len(l.entries[t])
}

// Element is a node of the page
type Element struct {
	ID   string
	Tag  string
	Text string
	Href string

	classes  []string
	attrs    map[string]string
	value    string
	parent   *Element
	children []*Element
	doc      *Document
	ls       listeners
}

// NewElement creates a detached element
func NewElement(tag, id string, classes ...string) *Element {
	return &Element{Tag: tag, ID: id, classes: append([]string(nil), classes...)}
}

// SetAttr sets an arbitrary attribute
func (e *Element) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
}

// Attr returns the attribute value and whether it is set
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Value returns the element's current input value
func (e *Element) Value() string { return e.value }

// SetValue sets the input value without dispatching events
func (e *Element) SetValue(v string) { e.value = v }

// Parent returns the parent element or nil
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// AppendChild attaches child as the last child of e
func (e *Element) AppendChild(child *Element) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	if e.doc != nil {
		e.doc.attach(child)
	}
}

// RemoveChild detaches child from e
func (e *Element) RemoveChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i:i], e.children[i+1:]...)
			child.parent = nil
			if e.doc != nil {
				e.doc.detach(child)
			}
			return
		}
	}
}

// ClearChildren removes every child of e
func (e *Element) ClearChildren() {
	for len(e.children) > 0 {
		e.RemoveChild(e.children[0])
	}
}

// HasClass reports whether the class list contains name
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds name to the class list if absent
func (e *Element) AddClass(name string) {
	if !e.HasClass(name) {
		e.classes = append(e.classes, name)
	}
}

// RemoveClass removes name from the class list
func (e *Element) RemoveClass(name string) {
	for i, c := range e.classes {
		if c == name {
			e.classes = append(e.classes[:i:i], e.classes[i+1:]...)
			return
		}
	}
}

// ClassName returns the space-separated class list
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// Closest returns e or the nearest ancestor carrying class, or nil
func (e *Element) Closest(class string) *Element {
	for n := e; n != nil; n = n.parent {
		if n.HasClass(class) {
			return n
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// AddEventListener registers fn for events of type t on e and returns a
// function that removes exactly this registration
func (e *Element) AddEventListener(t EventType, fn Listener) func() {
	return e.ls.add(t, fn)
}

// ListenerCount returns how many listeners of type t are registered on e
func (e *Element) ListenerCount(t EventType) int {
	return e.ls.count(t)
}

// Dispatch delivers ev to e's listeners. Click events then bubble to the
// document.
func (e *Element) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	e.ls.dispatch(ev)
	if ev.Type == EventClick && e.doc != nil {
		e.doc.ls.dispatch(ev)
	}
}

// Focus gives e the document focus and dispatches a focus event when it
// did not already have it
func (e *Element) Focus() {
	if e.doc == nil || e.doc.active == e {
		return
	}
	if prev := e.doc.active; prev != nil {
		e.doc.active = nil
		prev.Dispatch(&Event{Type: EventBlur})
	}
	e.doc.active = e
	e.Dispatch(&Event{Type: EventFocus})
}

// Blur removes focus from e
func (e *Element) Blur() {
	if e.doc == nil || e.doc.active != e {
		return
	}
	e.doc.active = nil
	e.Dispatch(&Event{Type: EventBlur})
}

// Focused reports whether e has the document focus
func (e *Element) Focused() bool {
	return e.doc != nil && e.doc.active == e
}

package ui

import (
	"sitesearch/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// initRequestMsg asks the model to run an initialization attempt on the
// update goroutine
type initRequestMsg struct {
	run   func() bool
	reply chan<- bool
}

// readerDoneMsg is sent when the reader pager exits
type readerDoneMsg struct {
	url string
	err error
}

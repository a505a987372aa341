package domain

import "unicode/utf16"

// Query and display limits shared by the widget and the terminal host
const (
	MinQueryLength = 2
	MaxResults     = 8
)

// ResultEntry is a single hit returned by the index
type ResultEntry struct {
	Ref   string  // document URL
	Score float64 // relevance score as reported by the index
}

// Document is the stored content of an indexed page
type Document struct {
	Ref   string
	Title string
	Body  string
}

// IsActiveQuery reports whether a trimmed query is long enough to search
// for. Length is counted in UTF-16 code units, as the browser counts it.
func IsActiveQuery(query string, minLength int) bool {
	if minLength <= 0 {
		minLength = MinQueryLength
	}
	return len(utf16.Encode([]rune(query))) >= minLength
}

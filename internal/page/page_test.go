package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSearchPageLayout(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()

	input := doc.GetElementByID(SearchInputID)
	results := doc.GetElementByID(SearchResultsID)
	list := doc.GetElementByID(SearchListID)
	require.NotNil(t, input)
	require.NotNil(t, results)
	require.NotNil(t, list)

	require.True(t, results.HasClass(HiddenClass))
	require.Same(t, results, list.Parent())
	require.NotNil(t, input.Closest(SearchContainer))
	require.NotNil(t, list.Closest(SearchContainer))
	require.Nil(t, doc.Body.Closest(SearchContainer))
}

func TestListenerRemovalIsPerRegistration(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()
	input := doc.GetElementByID(SearchInputID)

	calls := 0
	fn := func(*Event) { calls++ }
	remove1 := input.AddEventListener(EventInput, fn)
	input.AddEventListener(EventInput, fn)
	require.Equal(t, 2, input.ListenerCount(EventInput))

	remove1()
	remove1()
	require.Equal(t, 1, input.ListenerCount(EventInput))

	input.Type("ab")
	require.Equal(t, 1, calls)
	require.Equal(t, "ab", input.Value())
}

func TestClickBubblesToDocument(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()
	input := doc.GetElementByID(SearchInputID)

	var targets []*Element
	doc.AddEventListener(EventClick, func(ev *Event) { targets = append(targets, ev.Target) })

	doc.Click(input)
	doc.Click(nil)

	require.Len(t, targets, 2)
	require.Same(t, input, targets[0])
	require.Same(t, doc.Body, targets[1])
}

func TestFocusAndBlur(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()
	input := doc.GetElementByID(SearchInputID)

	var seen []EventType
	input.AddEventListener(EventFocus, func(ev *Event) { seen = append(seen, ev.Type) })
	input.AddEventListener(EventBlur, func(ev *Event) { seen = append(seen, ev.Type) })

	input.Focus()
	input.Focus()
	require.True(t, input.Focused())
	require.Same(t, input, doc.ActiveElement())

	input.Blur()
	require.False(t, input.Focused())
	require.Equal(t, []EventType{EventFocus, EventBlur}, seen)
}

func TestKeyDownReportsPreventDefault(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()
	input := doc.GetElementByID(SearchInputID)

	input.AddEventListener(EventKeyDown, func(ev *Event) {
		if ev.Key == KeyEnter {
			ev.PreventDefault()
		}
	})
	require.True(t, input.KeyDown(KeyEnter))
	require.False(t, input.KeyDown(KeyEscape))
}

func TestRemoveChildDetachesIDs(t *testing.T) {
	t.Parallel()
	doc := NewSearchPage()
	list := doc.GetElementByID(SearchListID)

	item := NewElement("div", "first", ResultItemClass)
	list.AppendChild(item)
	require.Same(t, item, doc.GetElementByID("first"))

	list.ClearChildren()
	require.Nil(t, doc.GetElementByID("first"))
	require.Empty(t, list.Children())
}

func TestClassList(t *testing.T) {
	t.Parallel()
	e := NewElement("div", "", "a")
	e.AddClass("b")
	e.AddClass("b")
	require.Equal(t, "a b", e.ClassName())
	e.RemoveClass("a")
	require.Equal(t, "b", e.ClassName())
	require.False(t, e.HasClass("a"))
}

func TestNavigateRecordsHistory(t *testing.T) {
	t.Parallel()
	doc := NewDocument()
	doc.Navigate("/a/")
	doc.Navigate("/b/")
	require.Equal(t, "/b/", doc.Location())
	require.Equal(t, []string{"/a/", "/b/"}, doc.History())
}

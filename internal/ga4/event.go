// Package ga4 is a small Google Analytics 4 collector client.
//
// It builds reports for served HTTP exchanges and sends them to the
// collector endpoint. A report carries one primary event (a page view by
// default) and any number of additional events, such as exceptions.
package ga4

// Event names understood by the collector.
const (
	EventPageView  = "page_view"
	EventException = "exception"
)

// Params holds event parameters. Values must be scalars: string, bool,
// or a numeric type.
type Params map[string]any

// Event is a named, parameterized signal sent to the collector.
type Event struct {
	Name   string
	Params Params
}

// PageView returns a page_view event with no parameters.
func PageView() Event {
	return Event{Name: EventPageView, Params: Params{}}
}

// Exception returns an exception event.
func Exception(description string, fatal bool) Event {
	return Event{
		Name: EventException,
		Params: Params{
			"description": description,
			"fatal":       fatal,
		},
	}
}

// SelectionKind tags how a report picks its primary event.
type SelectionKind int

const (
	// KindDefault leaves the primary event at its default (page_view).
	KindDefault SelectionKind = iota
	// KindOverride replaces the default with an explicit event.
	KindOverride
	// KindSuppress removes the primary event altogether.
	KindSuppress
)

func (k SelectionKind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindOverride:
		return "override"
	case KindSuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// Selection is the primary event choice of a report. The zero value is
// the default selection.
type Selection struct {
	kind  SelectionKind
	event Event
}

// Default returns the selection that implies a page_view.
func Default() Selection {
	return Selection{kind: KindDefault}
}

// Override returns a selection with an explicit primary event.
func Override(e Event) Selection {
	return Selection{kind: KindOverride, event: e}
}

// Suppress returns a selection with no primary event.
func Suppress() Selection {
	return Selection{kind: KindSuppress}
}

// Kind reports which variant s holds.
func (s Selection) Kind() SelectionKind {
	return s.kind
}

// Resolve returns the primary event, if any.
func (s Selection) Resolve() (Event, bool) {
	switch s.kind {
	case KindOverride:
		return s.event, true
	case KindSuppress:
		return Event{}, false
	default:
		return PageView(), true
	}
}

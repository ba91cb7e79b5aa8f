package admin

import (
	"strconv"
	"strings"
)

// ActionKind identifies a "With Selected" bulk action.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionDelete
	ActionAttachToPage
	ActionDetachFromPage
	ActionAttachAllPages
	ActionDetachAllPages
)

const (
	attachToPagePrefix   = "attach-to-page-"
	detachFromPagePrefix = "detach-from-page-"
)

// Action is a parsed bulk action selector.
type Action struct {
	Kind   ActionKind
	PageID int64 // Set for ActionAttachToPage and ActionDetachFromPage
	Raw    string
}

// ParseAction parses the value of the "with-selected" field. Anything that
// isn't a recognised selector, including a page action whose id is not a
// positive integer, yields ActionUnknown.
func ParseAction(s string) Action {
	a := Action{Raw: s}
	switch {
	case s == "delete":
		a.Kind = ActionDelete
	case s == "attach-all-pages":
		a.Kind = ActionAttachAllPages
	case s == "detach-all-pages":
		a.Kind = ActionDetachAllPages
	case strings.HasPrefix(s, attachToPagePrefix):
		if id, ok := parsePageID(strings.TrimPrefix(s, attachToPagePrefix)); ok {
			a.Kind, a.PageID = ActionAttachToPage, id
		}
	case strings.HasPrefix(s, detachFromPagePrefix):
		if id, ok := parsePageID(strings.TrimPrefix(s, detachFromPagePrefix)); ok {
			a.Kind, a.PageID = ActionDetachFromPage, id
		}
	}
	return a
}

func parsePageID(s string) (int64, bool) {
	// ParseInt accepts a leading sign; page ids never carry one.
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// String renders the selector the action was parsed from.
func (a Action) String() string {
	switch a.Kind {
	case ActionDelete:
		return "delete"
	case ActionAttachAllPages:
		return "attach-all-pages"
	case ActionDetachAllPages:
		return "detach-all-pages"
	case ActionAttachToPage:
		return attachToPagePrefix + strconv.FormatInt(a.PageID, 10)
	case ActionDetachFromPage:
		return detachFromPagePrefix + strconv.FormatInt(a.PageID, 10)
	}
	return a.Raw
}

// AttachTo returns the selector attaching items to a page.
func AttachTo(pageID int64) Action {
	return Action{Kind: ActionAttachToPage, PageID: pageID}
}

// DetachFrom returns the selector detaching items from a page.
func DetachFrom(pageID int64) Action {
	return Action{Kind: ActionDetachFromPage, PageID: pageID}
}

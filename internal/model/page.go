package model

// Page is a content page resources can be attached to.
type Page struct {
	ID        int64   `json:"id"`
	Parent    int64   `json:"parent,omitempty"` // 0 for root pages
	Title     string  `json:"title"`
	Handle    string  `json:"handle"`
	SortOrder int     `json:"sortorder"`
	Children  []*Page `json:"children,omitempty"` // Only populated for tree fetches
}

// PageTitle pairs a page id with its resolved, ancestor-qualified title.
type PageTitle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Severity of a user-visible alert.
type Severity string

const (
	SeverityNotice  Severity = "notice"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Alert is a message shown at the top of an admin page.
type Alert struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

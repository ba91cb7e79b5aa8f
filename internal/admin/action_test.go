package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in     string
		kind   ActionKind
		pageID int64
	}{
		{"delete", ActionDelete, 0},
		{"attach-all-pages", ActionAttachAllPages, 0},
		{"detach-all-pages", ActionDetachAllPages, 0},
		{"attach-to-page-7", ActionAttachToPage, 7},
		{"detach-from-page-12", ActionDetachFromPage, 12},
		{"attach-to-page-", ActionUnknown, 0},
		{"attach-to-page-abc", ActionUnknown, 0},
		{"attach-to-page-0", ActionUnknown, 0},
		{"attach-to-page--3", ActionUnknown, 0},
		{"attach-to-page-+3", ActionUnknown, 0},
		{"attach-from-page-3", ActionUnknown, 0},
		{"Delete", ActionUnknown, 0},
		{"", ActionUnknown, 0},
		{"publish", ActionUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a := ParseAction(tt.in)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.pageID, a.PageID)
			assert.Equal(t, tt.in, a.String())
		})
	}
}

func TestActionConstructors(t *testing.T) {
	assert.Equal(t, "attach-to-page-4", AttachTo(4).String())
	assert.Equal(t, "detach-from-page-9", DetachFrom(9).String())
	assert.Equal(t, DetachFrom(9).PageID, ParseAction(DetachFrom(9).String()).PageID)
}

package admin

import (
	"fmt"

	"go-resource-admin/internal/model"
)

// PagesFlatView lists every page with its ancestor-qualified title, in the
// page manager's order.
func (c *Controller) PagesFlatView() ([]model.PageTitle, error) {
	pages, err := c.pages.Fetch(false, []string{"id"})
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	titles := make([]model.PageTitle, 0, len(pages))
	for _, p := range pages {
		title, err := c.pages.ResolvePageTitle(p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve title of page %d: %w", p.ID, err)
		}
		titles = append(titles, model.PageTitle{ID: p.ID, Title: title})
	}
	return titles, nil
}

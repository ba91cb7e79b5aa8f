package admin

import (
	"go-resource-admin/internal/model"
)

// IndexTemplate is the template the index page renders with.
const IndexTemplate = "resources-index"

// IndexRow is one resource on the index and the pages it is attached to.
type IndexRow struct {
	Resource *model.Resource
	Pages    []model.PageTitle
}

// IndexView is everything the index template needs.
type IndexView struct {
	Type   model.ResourceType
	Sort   model.SortPreference
	Rows   []IndexRow
	Pages  []model.PageTitle // Targets of the attach and detach menu entries
	Alerts []model.Alert
}

// Index runs Sort and, unless it redirects, builds the index view. alerts
// left over from a failed bulk action are carried onto the view.
func (c *Controller) Index(req SortRequest, alerts ...model.Alert) (Result, error) {
	res, err := c.Sort(req)
	if err != nil || res.IsRedirect() {
		return res, err
	}

	pages, err := c.PagesFlatView()
	if err != nil {
		return Result{}, err
	}
	titles := make(map[int64]string, len(pages))
	for _, p := range pages {
		titles[p.ID] = p.Title
	}

	rows := make([]IndexRow, 0, len(res.Resources))
	for _, r := range res.Resources {
		attached, err := c.resources.GetAttachedPages(req.Type, r.Handle)
		if err != nil {
			return Result{}, err
		}
		row := IndexRow{Resource: r, Pages: make([]model.PageTitle, 0, len(attached))}
		for _, p := range attached {
			title, ok := titles[p.ID]
			if !ok {
				title = p.Title
			}
			row.Pages = append(row.Pages, model.PageTitle{ID: p.ID, Title: title})
		}
		rows = append(rows, row)
	}

	res.Alerts = append(res.Alerts, alerts...)
	res.View = &IndexView{
		Type:   req.Type,
		Sort:   res.Sort,
		Rows:   rows,
		Pages:  pages,
		Alerts: res.Alerts,
	}
	return res, nil
}

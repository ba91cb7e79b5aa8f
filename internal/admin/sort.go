package admin

import (
	"fmt"

	"go-resource-admin/internal/model"
	"go-resource-admin/internal/resourcemanager"
)

// SortRequest carries the sort related query parameters of an index request.
type SortRequest struct {
	Type       model.ResourceType
	Unsort     bool   // "unsort" was present
	Field      string // "sort"; empty when absent
	Order      string // "order"; empty when absent
	CurrentURL string // Path without its query string
}

// Sort applies a requested sort change or fetches the listing with the stored
// preference.
//
// Unsort resets the preference and redirects. A requested (field, order) that
// differs from the stored one is saved and redirects, so that the sort query
// never stays in the browser's address bar. Only when nothing changed are the
// resources fetched and returned for rendering. When only one of field and
// order is given the other is taken from the stored preference.
func (c *Controller) Sort(req SortRequest) (Result, error) {
	if !req.Type.Valid() {
		return Result{}, fmt.Errorf("%w: unknown resource type", ErrInvalidRequest)
	}
	t := req.Type

	if req.Unsort {
		if err := c.resources.SetSortingField(t, model.DefaultSortField, false); err != nil {
			return Result{}, err
		}
		if err := c.resources.SetSortingOrder(t, model.DefaultSortOrder, true); err != nil {
			return Result{}, err
		}
		c.logger.Info("Reset sort preference", "type", t)
		return redirectTo(req.CurrentURL), nil
	}

	stored := model.SortPreference{
		Field: c.resources.GetSortingField(t),
		Order: c.resources.GetSortingOrder(t),
	}

	if req.Field != "" || req.Order != "" {
		want := stored
		if req.Field != "" {
			want.Field = req.Field
		}
		if req.Order != "" {
			want.Order = req.Order
		}
		if !resourcemanager.IsSortableField(want.Field) {
			return Result{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidRequest, want.Field)
		}
		if !resourcemanager.IsSortOrder(want.Order) {
			return Result{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidRequest, want.Order)
		}

		if want != stored {
			if err := c.resources.SetSortingField(t, want.Field, false); err != nil {
				return Result{}, err
			}
			if err := c.resources.SetSortingOrder(t, want.Order, true); err != nil {
				return Result{}, err
			}
			c.logger.Info("Changed sort preference", "type", t, "field", want.Field, "order", want.Order)
			return redirectTo(req.CurrentURL), nil
		}
	}

	resources, err := c.resources.Fetch(t, nil, nil, stored.OrderClause())
	if err != nil {
		return Result{}, err
	}
	res := render()
	res.Sort = stored
	res.Resources = resources
	return res, nil
}

package admin

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go-resource-admin/internal/delegates"
	"go-resource-admin/internal/model"
	"go-resource-admin/pkg/fsutils"
)

// BulkRequest is a submitted "With Selected" form.
type BulkRequest struct {
	Type         model.ResourceType
	CurrentURL   string
	Apply        bool     // The apply button was pressed
	Items        []string // Checked handles, in form order
	WithSelected string
	Form         url.Values // Raw form, handed to CustomActions subscribers
}

// Bulk applies a "With Selected" action to the checked resources.
//
// The CustomActions delegate is always notified first, so extensions can
// handle selectors of their own. A failed item records an error alert and the
// remaining items are still processed; any failure keeps the client on the
// page so the alerts can be shown. Otherwise the result redirects back to
// the index with a success notice.
func (c *Controller) Bulk(req BulkRequest) (Result, error) {
	if !req.Type.Valid() {
		return Result{}, fmt.Errorf("%w: unknown resource type", ErrInvalidRequest)
	}
	t := req.Type

	driver, err := c.resources.ForType(t)
	if err != nil {
		return Result{}, err
	}

	c.notifier.Notify(delegates.CustomActions, t.PageContext(), &delegates.Context{Form: req.Form})

	if !req.Apply || len(req.Items) == 0 {
		return render(), nil
	}

	action := ParseAction(req.WithSelected)
	var (
		alerts []model.Alert
		notice string
	)
	fail := func(format string, args ...any) {
		alerts = append(alerts, alertf(model.SeverityError, format, args...))
	}

	switch action.Kind {
	case ActionDelete:
		for _, handle := range req.Items {
			if !validHandle(handle) {
				fail("Invalid handle <code>%s</code>.", handle)
				continue
			}
			path := driver.DriverPath(handle)
			if err := fsutils.DeleteFile(c.fs, path); err != nil {
				c.logger.Error("Failed to delete driver", "type", t, "handle", handle, "path", path, "error", err)
				fail("Failed to delete <code>%s</code>. Please check permissions on <code>%s</code>",
					filepath.Base(path), fsutils.RelativeDir(c.docRoot, path))
				continue
			}
			c.logger.Info("Deleted driver", "type", t, "handle", handle, "path", path)

			pages, err := c.resources.GetAttachedPages(t, handle)
			if err != nil {
				fail("Deleted <code>%s</code> but could not detach it from its pages.", handle)
				continue
			}
			for _, p := range pages {
				if err := c.resources.Detach(t, handle, p.ID); err != nil {
					fail("Deleted <code>%s</code> but could not detach it from page %d.", handle, p.ID)
				}
			}
		}
		notice = fmt.Sprintf("Deleted %s.", countNoun(len(req.Items), t))

	case ActionAttachToPage, ActionDetachFromPage:
		attach := action.Kind == ActionAttachToPage
		for _, handle := range req.Items {
			if err := c.setAttached(t, handle, action.PageID, attach); err != nil {
				fail("Failed to %s <code>%s</code>: %s", verb(attach), handle, err)
			}
		}
		notice = fmt.Sprintf("%s %s %s %s.", pastVerb(attach), countNoun(len(req.Items), t), preposition(attach), c.pageLabel(action.PageID))

	case ActionAttachAllPages, ActionDetachAllPages:
		attach := action.Kind == ActionAttachAllPages
		pages, err := c.pages.Fetch(false, []string{"id"})
		if err != nil {
			return Result{}, fmt.Errorf("failed to list pages: %w", err)
		}
		for _, handle := range req.Items {
			for _, p := range pages {
				if err := c.setAttached(t, handle, p.ID, attach); err != nil {
					fail("Failed to %s <code>%s</code>: %s", verb(attach), handle, err)
				}
			}
		}
		notice = fmt.Sprintf("%s %s %s all pages.", pastVerb(attach), countNoun(len(req.Items), t), preposition(attach))

	default:
		c.logger.Debug("Ignoring unknown bulk action", "type", t, "action", req.WithSelected)
		return render(), nil
	}

	if len(alerts) > 0 {
		return render(alerts...), nil
	}
	return redirectTo(req.CurrentURL, model.Alert{Message: notice, Severity: model.SeveritySuccess}), nil
}

// alertEscaper neutralises markup in values interpolated into alert
// messages, which are rendered as HTML.
var alertEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func alertf(severity model.Severity, format string, args ...any) model.Alert {
	for i, a := range args {
		switch v := a.(type) {
		case string:
			args[i] = alertEscaper.Replace(v)
		case error:
			args[i] = alertEscaper.Replace(v.Error())
		}
	}
	return model.Alert{Message: fmt.Sprintf(format, args...), Severity: severity}
}

func (c *Controller) setAttached(t model.ResourceType, handle string, pageID int64, attach bool) error {
	if attach {
		return c.resources.Attach(t, handle, pageID)
	}
	return c.resources.Detach(t, handle, pageID)
}

// pageLabel names a page in a notice, falling back to its id.
func (c *Controller) pageLabel(id int64) string {
	title, err := c.pages.ResolvePageTitle(id)
	if err != nil || title == "" {
		return fmt.Sprintf("page %d", id)
	}
	return fmt.Sprintf("page %q", alertEscaper.Replace(title))
}

// validHandle rejects handles that could escape the driver directory.
func validHandle(h string) bool {
	return h != "" && !strings.ContainsAny(h, `/\`) && !strings.Contains(h, "..")
}

func countNoun(n int, t model.ResourceType) string {
	noun := strings.ToLower(t.Label())
	if n == 1 {
		noun = strings.TrimSuffix(noun, "s")
	}
	return fmt.Sprintf("%d %s", n, noun)
}

func verb(attach bool) string {
	if attach {
		return "attach"
	}
	return "detach"
}

func pastVerb(attach bool) string {
	if attach {
		return "Attached"
	}
	return "Detached"
}

func preposition(attach bool) string {
	if attach {
		return "to"
	}
	return "from"
}

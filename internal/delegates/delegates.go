// Package delegates lets extensions hook into admin pages. Pages announce a
// named delegate at a fixed point of their processing and every subscriber
// registered for that delegate and page is called in order.
package delegates

import (
	"net/url"
	"sync"
)

// CustomActions is announced by resource indexes before a "With Selected"
// action is dispatched, so extensions can handle actions of their own.
const CustomActions = "CustomActions"

// AnyPage subscribes to a delegate on every page.
const AnyPage = "*"

// Context is passed to subscribers.
type Context struct {
	Delegate string
	Page     string     // e.g. "/blueprints/datasources/"
	Form     url.Values // Submitted form, if any
}

// Callback handles a delegate notification.
type Callback func(ctx *Context)

type subscription struct {
	page     string
	callback Callback
}

// Registry holds delegate subscriptions. The zero value is ready to use.
type Registry struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers callback for delegate on page (or AnyPage).
func (r *Registry) Subscribe(delegate, page string, callback Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs == nil {
		r.subs = map[string][]subscription{}
	}
	r.subs[delegate] = append(r.subs[delegate], subscription{page: page, callback: callback})
}

// Notify calls every subscriber of delegate whose page matches, in
// subscription order, and returns how many were called.
func (r *Registry) Notify(delegate, page string, ctx *Context) int {
	r.mu.RLock()
	subs := append([]subscription(nil), r.subs[delegate]...)
	r.mu.RUnlock()

	if ctx == nil {
		ctx = &Context{}
	}
	ctx.Delegate = delegate
	ctx.Page = page

	called := 0
	for _, s := range subs {
		if s.page != AnyPage && s.page != page {
			continue
		}
		s.callback(ctx)
		called++
	}
	return called
}

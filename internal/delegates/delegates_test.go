package delegates

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotify_MatchesPageAndOrder(t *testing.T) {
	var r Registry
	var calls []string

	r.Subscribe(CustomActions, "/blueprints/events/", func(ctx *Context) { calls = append(calls, "events") })
	r.Subscribe(CustomActions, AnyPage, func(ctx *Context) { calls = append(calls, "any:"+ctx.Page) })
	r.Subscribe(CustomActions, "/blueprints/datasources/", func(ctx *Context) { calls = append(calls, "datasources") })
	r.Subscribe("Other", AnyPage, func(ctx *Context) { calls = append(calls, "other") })

	n := r.Notify(CustomActions, "/blueprints/events/", nil)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"events", "any:/blueprints/events/"}, calls)
}

func TestNotify_PassesForm(t *testing.T) {
	r := NewRegistry()
	var got *Context
	r.Subscribe(CustomActions, AnyPage, func(ctx *Context) { got = ctx })

	form := url.Values{"with-selected": {"export"}}
	r.Notify(CustomActions, "/blueprints/datasources/", &Context{Form: form})

	if assert.NotNil(t, got) {
		assert.Equal(t, CustomActions, got.Delegate)
		assert.Equal(t, "export", got.Form.Get("with-selected"))
	}
}

func TestNotify_NoSubscribers(t *testing.T) {
	var r Registry
	assert.Equal(t, 0, r.Notify(CustomActions, "/blueprints/events/", nil))
}

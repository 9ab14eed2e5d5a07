// Package ctx gives handlers a single request/response value with helpers
// for binding, identity and the API's JSON bodies.
//
//	func (c *OrderController) Store(x *ctx.Context) {
//	    var in OrderRequest
//	    if !x.Decode(&in) {
//	        return
//	    }
//	    x.OK(response.Payload{"orderId": id})
//	}
//
//	r.Post("/orders", "orders.store", ctx.Wrap(orders.Store))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/tiffin/pkg/bind"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/middleware"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

// MsgInvalidBody is sent when the body is not decodable JSON.
const MsgInvalidBody = "Invalid request body"

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Log is the request-scoped logger.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

func (c *Context) Param(key string) string  { return chi.URLParam(c.R, key) }
func (c *Context) Query(key string) string  { return c.R.URL.Query().Get(key) }
func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

// UserID returns the authenticated caller's id, or "" for anonymous calls.
func (c *Context) UserID() string {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

func (c *Context) Role() string {
	role, _ := middleware.RoleFromCtx(c.R)
	return role
}

// Decode reads the JSON body into dest. On failure it answers 400 and
// returns false.
func (c *Context) Decode(dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		c.Log().Debug("bad request body", "error", err)
		c.Error(http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}

// Bind is Decode plus struct-tag validation; the first validation message
// is sent as a domain failure.
func (c *Context) Bind(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Log().Debug("bad request body", "error", err)
		c.Error(http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	if len(errs) > 0 {
		c.Fail(errs.First())
		return false
	}
	return true
}

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// OK sends {"success": true, ...payload}.
func (c *Context) OK(payload response.Payload) {
	c.status = http.StatusOK
	response.OK(c.W, payload)
}

// Fail sends the domain failure body {"error": msg} with status 200.
func (c *Context) Fail(msg string) {
	c.status = http.StatusOK
	response.Fail(c.W, msg)
}

func (c *Context) Error(code int, msg string) {
	c.status = code
	response.Error(c.W, code, msg)
}

// WrittenStatus is the status sent so far, 0 before any write.
func (c *Context) WrittenStatus() int { return c.status }

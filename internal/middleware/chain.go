// Package middleware composes the HTTP middleware stack served in front of
// the editor API.
//
// Middlewares run in the order they were added: the first one added is the
// outermost wrapper, so a request flows first -> last -> handler and the
// response flows back the other way.
package middleware

import (
	"fmt"
	"net/http"
)

// Middleware represents a single middleware function
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack. It is not safe to add middlewares
// while Apply runs on another goroutine.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain holding middlewares in order.
func NewChain(middlewares ...Middleware) *Chain {
	c := &Chain{middlewares: make([]Middleware, 0, len(middlewares))}
	for _, m := range middlewares {
		c.Use(m)
	}
	return c
}

// Use appends an inner middleware. nil is ignored so optional middlewares
// can be passed unconditionally.
func (c *Chain) Use(m Middleware) {
	if m == nil {
		return
	}
	c.middlewares = append(c.middlewares, m)
}

// Len reports the number of middlewares.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Apply wraps handler with every middleware.
//
// Example with middlewares [A, B, C] and handler H: A(B(C(H))).
func (c *Chain) Apply(handler http.Handler) http.Handler {
	if handler == nil {
		panic("middleware: Apply called with a nil handler")
	}

	wrapped := handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		wrapped = c.middlewares[i](wrapped)
		if wrapped == nil {
			panic(fmt.Sprintf("middleware: middleware at index %d returned nil handler", i))
		}
	}
	return wrapped
}

package http

import "slices"

// Route binds a first path segment to a handler. A route without methods matches every method.
type Route struct {
	Methods []string
	Segment string
	Handler Handler
}

func (route Route) Match(method, segment string) bool {
	if route.Segment != segment {
		return false
	}
	return len(route.Methods) == 0 || slices.Contains(route.Methods, method)
}

var NotFoundHandler Handler = func(ctx *RequestCtx) {
	ctx.Response.WithStatus(StatusNotFound).WithText("")
}

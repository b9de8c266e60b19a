package http

type Handler func(ctx *RequestCtx)

// Router dispatches on the first "/"-delimited path segment. Routes are tried in registration
// order and the first match wins; unmatched requests go to NotFoundHandler.
type Router struct {
	Routes     []Route
	Middleware []Middleware
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

// Handle registers a route that matches every method.
func (router *Router) Handle(segment string, handler Handler, middleware ...Middleware) {
	router.Any(nil, segment, handler, middleware...)
}

func (router *Router) GET(segment string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodGet}, segment, handler, middleware...)
}

func (router *Router) POST(segment string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPost}, segment, handler, middleware...)
}

func (router *Router) Any(methods []string, segment string, handler Handler, middleware ...Middleware) {
	for _, middleware := range middleware {
		handler = middleware(handler)
	}

	router.Routes = append(router.Routes, Route{
		Methods: methods,
		Segment: segment,
		Handler: handler,
	})
}

// Use adds middleware wrapped around every route, including the not-found fallback.
func (router *Router) Use(middleware ...Middleware) {
	router.Middleware = append(router.Middleware, middleware...)
}

func (router *Router) Handler() Handler {
	routes := router.Routes

	var handler Handler = func(ctx *RequestCtx) {
		segments := ctx.Request.Segments()

		for _, route := range routes {
			if !route.Match(ctx.Request.Method, segments[0]) {
				continue
			}

			ctx.Params = segments[1:]
			route.Handler(ctx)
			return
		}

		NotFoundHandler(ctx)
	}

	for _, middleware := range router.Middleware {
		handler = middleware(handler)
	}

	return handler
}

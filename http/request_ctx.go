package http

import "context"

type RequestCtx struct {
	ConnID  string
	Context context.Context

	// Params holds the path segments after the one the route matched on.
	Params []string

	Request  Request
	Response Response
}

// Param returns the i-th parameter segment and whether it was present.
func (reqCtx *RequestCtx) Param(i int) (string, bool) {
	if i < 0 || i >= len(reqCtx.Params) {
		return "", false
	}
	return reqCtx.Params[i], true
}

func (reqCtx *RequestCtx) Reset() {
	reqCtx.Context = context.Background()
	reqCtx.Params = nil
	reqCtx.Request.Reset()
	reqCtx.Response.Reset()
}

// Package handlers holds the routes the server exposes:
//
//	/                 200, empty body
//	/echo/<text>      200, body is <text>
//	/user-agent       200, body is the User-Agent header
//	/files/<name>     GET reads, POST writes a file under the storage root
//
// Everything else is a 404 with an empty body.
package handlers

import (
	"log/slog"

	"github.com/freekieb7/gravel-httpd/filesystem"
	"github.com/freekieb7/gravel-httpd/http"
)

func Register(router *http.Router, files filesystem.Filesystem, logger *slog.Logger) {
	router.Handle("", Root)
	router.Handle("echo", Echo)
	router.Handle("user-agent", UserAgent)
	router.POST("files", WriteFile(files, logger))
	router.Handle("files", ReadFile(files, logger))
}

func Root(ctx *http.RequestCtx) {
	ctx.Response.WithStatus(http.StatusOK).WithText("")
}

func Echo(ctx *http.RequestCtx) {
	text, ok := ctx.Param(0)
	if !ok {
		http.NotFoundHandler(ctx)
		return
	}

	ctx.Response.WithStatus(http.StatusOK).WithText(text)
}

func UserAgent(ctx *http.RequestCtx) {
	ctx.Response.WithStatus(http.StatusOK).WithText(ctx.Request.Headers.Get("user-agent"))
}

func ReadFile(files filesystem.Filesystem, logger *slog.Logger) http.Handler {
	return func(ctx *http.RequestCtx) {
		name, ok := ctx.Param(0)
		if !ok {
			http.NotFoundHandler(ctx)
			return
		}

		content, err := files.ReadFile(name)
		if err != nil {
			logger.Warn("reading file failed", "conn", ctx.ConnID, "file", name, "error", err)
			http.NotFoundHandler(ctx)
			return
		}

		ctx.Response.WithStatus(http.StatusOK).WithBytes(filesystem.ContentType(name), content)
	}
}

func WriteFile(files filesystem.Filesystem, logger *slog.Logger) http.Handler {
	return func(ctx *http.RequestCtx) {
		name, ok := ctx.Param(0)
		if !ok {
			http.NotFoundHandler(ctx)
			return
		}

		if err := files.WriteFile(name, ctx.Request.Body); err != nil {
			logger.Error("writing file failed", "conn", ctx.ConnID, "file", name, "error", err)
			ctx.Response.WithStatus(http.StatusInternalServerError).WithText("")
			return
		}

		ctx.Response.WithStatus(http.StatusCreated).WithText("")
	}
}

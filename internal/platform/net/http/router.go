package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
)

// Router is the minimal routing seam handlers mount against
// it keeps modules off the concrete chi type
type Router interface {
	Use(mw ...func(stdhttp.Handler) stdhttp.Handler)
	Get(pattern string, h stdhttp.HandlerFunc)
	Post(pattern string, h stdhttp.HandlerFunc)
	Route(pattern string, fn func(Router))
}

type chiRouter struct{ r chi.Router }

// AdaptChi wraps a chi router in the Router seam
func AdaptChi(r chi.Router) Router { return chiRouter{r: r} }

func (c chiRouter) Use(mw ...func(stdhttp.Handler) stdhttp.Handler) { c.r.Use(mw...) }
func (c chiRouter) Get(pattern string, h stdhttp.HandlerFunc)       { c.r.Get(pattern, h) }
func (c chiRouter) Post(pattern string, h stdhttp.HandlerFunc)      { c.r.Post(pattern, h) }

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(AdaptChi(sub)) })
}

// Param reads a path parameter from the request
func Param(r *stdhttp.Request, name string) string { return chi.URLParam(r, name) }

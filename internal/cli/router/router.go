// Package router maps storefront paths to guarded views and performs
// navigation. Resolving a path is a pure decision; Navigate is the only
// place a redirect is followed.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/guard"
	"github.com/myshop-dev/myshop/internal/cli/session"
)

// maxRedirects bounds how many redirects one navigation may follow.
const maxRedirects = 4

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrRedirectLoop  = errors.New("too many redirects")
)

// Request is what a view receives when it is rendered.
type Request struct {
	Path      string
	Params    map[string]string
	Query     url.Values
	Principal auth.Principal
	Out       io.Writer
}

// Param returns a path parameter, or "" if the route has none by that name.
func (r Request) Param(name string) string {
	return r.Params[name]
}

// View renders one screen. A non-empty redirect sends navigation elsewhere
// once the view is done.
type View interface {
	Render(ctx context.Context, req Request) (redirect string, err error)
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, req Request) (string, error)

func (f ViewFunc) Render(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Chrome is drawn above every admitted view, e.g. the navigation shell.
type Chrome interface {
	Render(w io.Writer, path string) error
}

// Route binds a path pattern such as /products/:id to a guard and a view.
type Route struct {
	Pattern string
	Guard   guard.Guard
	View    View
}

// Resolution is the outcome of resolving a path without side effects.
type Resolution struct {
	Route    *Route
	Params   map[string]string
	Decision guard.Decision
}

// Router resolves paths against its route table.
type Router struct {
	routes   []Route
	sessions auth.SessionReader
	chrome   Chrome
	logger   zerolog.Logger
}

// New creates a router over routes. chrome may be nil.
func New(routes []Route, sessions auth.SessionReader, chrome Chrome, logger zerolog.Logger) *Router {
	return &Router{
		routes:   routes,
		sessions: sessions,
		chrome:   chrome,
		logger:   logger,
	}
}

// Routes returns the route table.
func (r *Router) Routes() []Route {
	return r.routes
}

// LandingFor returns the landing path of a principal.
func LandingFor(p auth.Principal) string {
	return session.LandingFor(p)
}

// Resolve matches path and asks the route's guard about the current
// principal. It performs no navigation.
func (r *Router) Resolve(path string) (Resolution, error) {
	target, _ := splitQuery(path)
	return r.resolve(target, auth.CurrentPrincipal(r.sessions))
}

func (r *Router) resolve(path string, p auth.Principal) (Resolution, error) {
	route, params, ok := r.match(path)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	decision := guard.Decision{Admit: true}
	if route.Guard != nil {
		decision = route.Guard.Decide(p)
	}
	return Resolution{Route: route, Params: params, Decision: decision}, nil
}

// Navigate resolves path, renders the admitted view to out and follows any
// redirect issued by a guard or a view. It returns the path that was
// finally rendered.
func (r *Router) Navigate(ctx context.Context, path string, out io.Writer) (string, error) {
	current := path
	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return current, fmt.Errorf("%w: stopped at %s after %d hops", ErrRedirectLoop, current, maxRedirects)
		}
		if err := ctx.Err(); err != nil {
			return current, err
		}

		// One store read per hop: the guard and the view see the same principal.
		principal := auth.CurrentPrincipal(r.sessions)
		target, query := splitQuery(current)
		res, err := r.resolve(target, principal)
		if err != nil {
			return current, err
		}

		if !res.Decision.Admit {
			r.logger.Debug().
				Str("path", target).
				Str("redirect", res.Decision.Redirect).
				Msg("Navigation denied")
			current = res.Decision.Redirect
			continue
		}

		if r.chrome != nil {
			if err := r.chrome.Render(out, target); err != nil {
				return target, fmt.Errorf("failed to render navigation: %w", err)
			}
		}

		redirect, err := res.Route.View.Render(ctx, Request{
			Path:      target,
			Params:    res.Params,
			Query:     query,
			Principal: principal,
			Out:       out,
		})
		if err != nil {
			return target, err
		}
		if redirect == "" {
			return target, nil
		}

		r.logger.Debug().Str("path", target).Str("redirect", redirect).Msg("View redirected")
		current = redirect
	}
}

func (r *Router) match(path string) (*Route, map[string]string, bool) {
	segments := splitPath(path)
	for i := range r.routes {
		if params, ok := matchPattern(splitPath(r.routes[i].Pattern), segments); ok {
			return &r.routes[i], params, true
		}
	}
	return nil, nil, false
}

func matchPattern(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}

	params := map[string]string{}
	for i, part := range pattern {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			value, err := url.PathUnescape(segments[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if part != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func splitQuery(path string) (string, url.Values) {
	target, rawQuery, found := strings.Cut(path, "?")
	if !found {
		return target, url.Values{}
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return target, url.Values{}
	}
	return target, query
}

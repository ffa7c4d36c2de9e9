package lambda

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	msgInvalidMethod = "Invalid method"
	msgNotFound      = "Not found"
)

// Params holds the path parameters captured by a route pattern
type Params map[string]string

// Get returns the named parameter or ""
func (p Params) Get(name string) string {
	return p[name]
}

// Route binds a method and a path pattern such as /carts/:id to a handler
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

type compiledRoute struct {
	Route
	segments []string
}

// match reports whether path segments fit the pattern and returns the
// captured parameters
func (r compiledRoute) match(segments []string) (Params, bool) {
	if len(segments) != len(r.segments) {
		return nil, false
	}

	params := Params{}
	for i, seg := range r.segments {
		if strings.HasPrefix(seg, ":") {
			if segments[i] == "" {
				return nil, false
			}
			params[seg[1:]] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// Router dispatches requests through a declarative route table
type Router struct {
	routes     []compiledRoute
	prefixes   []string
	middleware []Middleware
	logger     *logrus.Logger
}

// Option configures a Router
type Option func(*Router)

// WithPrefix strips any of the given base paths before matching
func WithPrefix(prefixes ...string) Option {
	return func(r *Router) {
		for _, p := range prefixes {
			p = "/" + strings.Trim(p, "/")
			if p != "/" {
				r.prefixes = append(r.prefixes, p)
			}
		}
	}
}

// WithMiddleware wraps every matched handler, outermost first
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithLogger sets the router logger
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter compiles the route table
func NewRouter(routes []Route, opts ...Option) *Router {
	r := &Router{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}

	for _, route := range routes {
		r.routes = append(r.routes, compiledRoute{
			Route:    route,
			segments: splitPath(route.Pattern),
		})
	}
	return r
}

// Handle dispatches req. It never returns an error: failures become
// 403, 404 or 500 responses carrying a message body.
func (r *Router) Handle(ctx context.Context, req *Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"method": req.Method,
				"path":   req.Path,
				"panic":  rec,
			}).Error("Handler panicked")
			resp, err = withCORS(Message(http.StatusInternalServerError, fmt.Sprint(rec))), nil
		}
	}()

	if req.Method == http.MethodOptions {
		return withCORS(Text(http.StatusOK, "ok")), nil
	}

	handler, params, status := r.lookup(req.Method, r.stripPrefix(req.Path))
	switch status {
	case http.StatusNotFound:
		return withCORS(Message(http.StatusNotFound, msgNotFound)), nil
	case http.StatusForbidden:
		return withCORS(Message(http.StatusForbidden, msgInvalidMethod)), nil
	}

	req.PathParams = params

	resp, err = Chain(handler, r.middleware...)(ctx, req)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.Path,
		}).Error("Handler failed")
		return withCORS(Message(http.StatusInternalServerError, err.Error())), nil
	}
	if resp == nil {
		resp = &Response{StatusCode: http.StatusNoContent}
	}

	return withCORS(resp), nil
}

// lookup finds the handler for method and path. A path that matches some
// route under another method yields 403.
func (r *Router) lookup(method, path string) (HandlerFunc, Params, int) {
	segments := splitPath(path)
	pathMatched := false

	for _, route := range r.routes {
		params, ok := route.match(segments)
		if !ok {
			continue
		}
		if route.Method == method {
			return route.Handler, params, http.StatusOK
		}
		pathMatched = true
	}

	if pathMatched {
		return nil, nil, http.StatusForbidden
	}
	return nil, nil, http.StatusNotFound
}

func (r *Router) stripPrefix(path string) string {
	for _, p := range r.prefixes {
		if path == p {
			return "/"
		}
		if strings.HasPrefix(path, p+"/") {
			return strings.TrimPrefix(path, p)
		}
	}
	return path
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}

func withCORS(resp *Response) *Response {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string, len(CORSHeaders))
	}
	for k, v := range CORSHeaders {
		if _, ok := resp.Headers[k]; !ok {
			resp.Headers[k] = v
		}
	}
	return resp
}

package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	gmux "github.com/gorilla/mux"

	"github.com/dmitrymomot/cravecorner/core/handler"
)

type mux[C handler.Context] struct {
	root         *gmux.Router
	sub          *gmux.Router
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	hasRoutes    bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	root := gmux.NewRouter()
	m := &mux[C]{
		root:         root,
		sub:          root,
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		var zero C
		if _, ok := any(zero).(*Context); !ok {
			panic(ErrNoContextFactory)
		}
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			return any(newContext(w, r, params)).(C)
		}
	}

	root.NotFoundHandler = m.fail(ErrNotFound)
	root.MethodNotAllowedHandler = m.fail(ErrMethodNotAllowed)

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.root.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(pattern, h, http.MethodGet)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(pattern, h, http.MethodPost)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(pattern, h, http.MethodPut)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(pattern, h, http.MethodDelete)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(pattern, h, http.MethodPatch)
}

func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	upper := make([]string, 0, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if _, ok := knownMethods[method]; !ok {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		upper = append(upper, method)
	}
	m.handle(pattern, h, upper...)
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic("router: all middlewares must be defined before routes")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return m.child(m.sub, middlewares)
}

func (m *mux[C]) Route(prefix string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, prefix))
	}
	if prefix == "" || prefix[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, prefix))
	}
	sub := m.child(m.sub.PathPrefix(strings.TrimSuffix(prefix, "/")).Subrouter(), nil)
	fn(sub)
	return sub
}

func (m *mux[C]) Routes() []Route {
	var routes []Route
	_ = m.root.Walk(func(route *gmux.Route, _ *gmux.Router, _ []*gmux.Route) error {
		pattern, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			// Prefix-only routes carry no methods.
			return nil
		}
		for _, method := range methods {
			routes = append(routes, Route{Method: method, Pattern: pattern})
		}
		return nil
	})
	return routes
}

func (m *mux[C]) child(sub *gmux.Router, extra []handler.Middleware[C]) *mux[C] {
	mws := make([]handler.Middleware[C], 0, len(m.middlewares)+len(extra))
	mws = append(mws, m.middlewares...)
	mws = append(mws, extra...)
	return &mux[C]{
		root:         m.root,
		sub:          sub,
		middlewares:  mws,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

func (m *mux[C]) handle(pattern string, fn handler.HandlerFunc[C], methods ...string) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
	m.hasRoutes = true
	m.sub.Handle(pattern, m.serve(chain(m.middlewares, fn))).Methods(methods...)
}

// serve turns a typed handler into an http.Handler with panic recovery.
func (m *mux[C]) serve(fn handler.HandlerFunc[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.newContext(ww, r, gmux.Vars(r))

		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					m.logger.Error("panic after response written",
						slog.Any("value", panicErr.value),
						slog.String("stack", string(panicErr.stack)),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.Int("status", ww.Status()),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		response := fn(ctx)
		if response == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := response(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	})
}

func (m *mux[C]) fail(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		m.errorHandler(m.newContext(ww, r, nil), err)
	})
}

func chain[C handler.Context](middlewares []handler.Middleware[C], fn handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

package app

import (
	"context"
	"fmt"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Router dispatches messages to the handler registered for their path.
type Router struct {
	routes map[string]htlc.Handler
}

var _ htlc.Registry = (*Router)(nil)
var _ htlc.Handler = (*Router)(nil)

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]htlc.Handler)}
}

// Handle registers a handler for given path. It panics on an invalid or
// already registered path.
func (r *Router) Handle(path string, h htlc.Handler) {
	if !htlc.IsValidPath(path) {
		panic(errors.Wrap(errors.ErrHuman, path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler of given path. Unknown paths are served by
// a handler that always fails with ErrNotFound.
func (r *Router) Handler(path string) htlc.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

func (r *Router) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	return r.Handler(msg.Path()).Check(ctx, db, msg)
}

func (r *Router) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	return r.Handler(msg.Path()).Deliver(ctx, db, msg)
}

type notFoundHandler string

func (path notFoundHandler) Check(context.Context, htlc.KVStore, htlc.Msg) error {
	return errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(path))
}

func (path notFoundHandler) Deliver(context.Context, htlc.CacheableKVStore, htlc.Msg) ([]byte, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(path))
}

// QueryRouter dispatches queries to the handler registered for their
// path.
type QueryRouter struct {
	routes map[string]htlc.QueryHandler
}

var _ htlc.QueryRegistry = (*QueryRouter)(nil)

// NewQueryRouter returns an empty query router.
func NewQueryRouter() *QueryRouter {
	return &QueryRouter{routes: make(map[string]htlc.QueryHandler)}
}

// Register a new query handler. It panics on an invalid or already
// registered path.
func (r *QueryRouter) Register(path string, h htlc.QueryHandler) {
	if !htlc.IsValidPath(path) {
		panic(errors.Wrap(errors.ErrHuman, path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering query path: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the query handler of given path or nil.
func (r *QueryRouter) Handler(path string) htlc.QueryHandler {
	return r.routes[path]
}

package app

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/x"
	"github.com/iov-one/htlc/x/access"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/aswap"
	"github.com/iov-one/htlc/x/audit"
)

// Stack groups the swap packages wired together over one asset router.
type Stack struct {
	Assets *assets.Router
	Roles  access.RoleStore
	Gate   access.Gate
	Feed   audit.Feed
	Swaps  *aswap.Registry

	router  *Router
	queries *QueryRouter
}

// NewStack registers the handlers and queries of the access, aswap and
// audit packages. The asset router is used as the swap transfer adapter
// and as the genesis initializer of balances.
func NewStack(auth x.Authenticator, adapter *assets.Router, opts ...aswap.Option) *Stack {
	s := &Stack{
		Assets:  adapter,
		Roles:   access.NewRoleStore(),
		Feed:    audit.NewFeed(),
		router:  NewRouter(),
		queries: NewQueryRouter(),
	}
	s.Gate = access.NewGate(s.Roles)
	s.Swaps = aswap.NewRegistry(auth, adapter, s.Gate, append([]aswap.Option{aswap.WithFeed(s.Feed)}, opts...)...)

	access.RegisterRoutes(s.router, auth, s.Gate, s.Roles)
	access.RegisterQuery(s.queries, s.Roles)
	aswap.RegisterRoutes(s.router, s.Swaps)
	aswap.RegisterQuery(s.queries, s.Swaps)
	s.Feed.Register(s.queries)
	return s
}

// Handler returns the message router wrapped with logging and panic
// recovery.
func (s *Stack) Handler() htlc.Handler {
	return ChainDecorators(
		NewLogging(),
		NewRecovery(),
	).WithHandler(s.router)
}

// Queries returns the query router.
func (s *Stack) Queries() *QueryRouter {
	return s.queries
}

// Initializer loads configuration, roles and balances from genesis.
func (s *Stack) Initializer() htlc.Initializer {
	return ChainInitializers(
		access.Initializer{Gate: s.Gate, Roles: s.Roles},
		aswap.Initializer{},
		s.Assets,
	)
}

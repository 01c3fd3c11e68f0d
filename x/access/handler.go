package access

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/gconf"
	"github.com/iov-one/htlc/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r htlc.Registry, auth x.Authenticator, gate Gate, roles RoleStore) {
	r.Handle(pathPause, PauseHandler{auth: auth, gate: gate})
	r.Handle(pathGrantRole, RoleHandler{auth: auth, roles: roles})
	r.Handle(pathRevokeRole, RoleHandler{auth: auth, roles: roles})
	r.Handle(pathUpdateConfiguration, gconf.NewUpdateConfigurationHandler("access", &Configuration{}, auth))
}

// RegisterQuery exposes role assignments.
func RegisterQuery(qr htlc.QueryRegistry, roles RoleStore) {
	roles.Register(qr)
}

// requireAdmin fails unless the configured admin signed the message.
func requireAdmin(ctx context.Context, db htlc.ReadOnlyKVStore, auth x.Authenticator) error {
	var conf Configuration
	if err := gconf.Load(db, "access", &conf); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	return x.RequireSigner(ctx, auth, conf.Admin, "admin")
}

// PauseHandler toggles the global pause flag.
type PauseHandler struct {
	auth x.Authenticator
	gate Gate
}

var _ htlc.Handler = PauseHandler{}

func (h PauseHandler) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	_, err := h.validate(ctx, db, msg)
	return err
}

func (h PauseHandler) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	m, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	if err := h.gate.SetPaused(db, m.Paused); err != nil {
		return nil, err
	}
	htlc.GetLogger(ctx).Info("pause flag changed", "paused", m.Paused)
	return nil, nil
}

func (h PauseHandler) validate(ctx context.Context, db htlc.ReadOnlyKVStore, msg htlc.Msg) (*PauseMsg, error) {
	m, ok := msg.(*PauseMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unexpected message %T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, db, h.auth); err != nil {
		return nil, err
	}
	return m, nil
}

// RoleHandler grants and revokes roles.
type RoleHandler struct {
	auth  x.Authenticator
	roles RoleStore
}

var _ htlc.Handler = RoleHandler{}

func (h RoleHandler) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return requireAdmin(ctx, db, h.auth)
}

func (h RoleHandler) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	if err := h.Check(ctx, db, msg); err != nil {
		return nil, err
	}
	log := htlc.GetLogger(ctx)
	switch m := msg.(type) {
	case *GrantRoleMsg:
		if err := h.roles.Grant(db, m.Principal, Role(m.Role)); err != nil {
			return nil, err
		}
		log.Info("role granted", "principal", m.Principal, "role", m.Role)
	case *RevokeRoleMsg:
		if err := h.roles.Revoke(db, m.Principal, Role(m.Role)); err != nil {
			return nil, err
		}
		log.Info("role revoked", "principal", m.Principal, "role", m.Role)
	default:
		return nil, errors.Wrapf(errors.ErrType, "unexpected message %T", msg)
	}
	return nil, nil
}

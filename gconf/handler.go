package gconf

import (
	"context"
	"reflect"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x"
)

// OwnedConfig is a configuration that names who may change it.
type OwnedConfig interface {
	Configuration
	GetOwner() htlc.Address
}

// UpdateConfigurationHandler processes messages that patch the
// configuration of a single package.
type UpdateConfigurationHandler struct {
	pkg    string
	config OwnedConfig
	auth   x.Authenticator
}

var _ htlc.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler handles messages that patch the
// configuration of pkg. Messages are struct pointers with a Patch field of
// the same type as config and must be signed by the current owner. Only a
// configuration created at genesis can be patched.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:    pkg,
		config: config,
		auth:   auth,
	}
}

func (h UpdateConfigurationHandler) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	_, err := h.apply(ctx, db, msg)
	return err
}

func (h UpdateConfigurationHandler) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	conf, err := h.apply(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	if err := Save(db, h.pkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	htlc.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg)
	return nil, nil
}

// apply loads the stored configuration, checks that its owner signed msg
// and returns the configuration with the patch carried by msg applied.
func (h UpdateConfigurationHandler) apply(ctx context.Context, db htlc.KVStore, msg htlc.Msg) (OwnedConfig, error) {
	current := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)
	if err := Load(db, h.pkg, current); err != nil {
		return nil, errors.Wrapf(err, "%s configuration", h.pkg)
	}
	if err := x.RequireSigner(ctx, h.auth, current.GetOwner(), "owner"); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	changes, err := patchOf(msg)
	if err != nil {
		return nil, err
	}
	if err := merge(current, changes); err != nil {
		return nil, err
	}
	if err := current.Validate(); err != nil {
		return nil, errors.Wrap(err, "patched configuration")
	}
	return current, nil
}

// merge copies every non zero field of changes into dst. A field can
// therefore never be reset to its zero value through a patch.
func merge(dst, changes OwnedConfig) error {
	if reflect.TypeOf(dst) != reflect.TypeOf(changes) {
		return errors.Wrapf(errors.ErrType, "cannot patch %T with %T", dst, changes)
	}
	to := reflect.ValueOf(dst).Elem()
	from := reflect.ValueOf(changes).Elem()
	for i := 0; i < from.NumField(); i++ {
		if f := from.Field(i); !f.IsZero() {
			to.Field(i).Set(f)
		}
	}
	return nil
}

// patchOf returns the Patch field of msg, which must point to a struct of
// the configuration type.
func patchOf(msg htlc.Msg) (OwnedConfig, error) {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a struct pointer", msg)
	}
	f := v.Elem().FieldByName("Patch")
	if !f.IsValid() || f.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrType, "%T carries no Patch", msg)
	}
	if f.IsNil() {
		return nil, errors.Wrap(errors.ErrState, "empty patch")
	}
	changes, ok := f.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "patch of type %s", f.Type())
	}
	return changes, nil
}

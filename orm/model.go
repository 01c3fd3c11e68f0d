package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model Because of Go type system, using []Model would not work for us.
// Instead we use a placeholder type and the validation is done during the
// runtime.
type ModelSlicePtr interface{}

// Marshal serializes a model using the protobuf wire format.
func Marshal(m Model) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrEncoding, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads serialized data into given model.
func Unmarshal(raw []byte, dest Model) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrEncoding, "unmarshal %T: %s", dest, err)
	}
	return nil
}

package assets

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// balances keeps 256 bit balances under a common key prefix. A missing
// key is a zero balance and zero balances are removed from the store.
type balances struct {
	prefix []byte
}

func (b balances) key(parts ...[]byte) []byte {
	k := append([]byte{}, b.prefix...)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func (b balances) get(db htlc.ReadOnlyKVStore, key []byte) (*uint256.Int, error) {
	raw, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	v := new(uint256.Int)
	if raw == nil {
		return v, nil
	}
	if len(raw) != 32 {
		return nil, errors.Wrapf(errors.ErrEncoding, "balance of %d bytes", len(raw))
	}
	return v.SetBytes(raw), nil
}

func (b balances) set(db htlc.KVStore, key []byte, v *uint256.Int) error {
	if v.IsZero() {
		return db.Delete(key)
	}
	raw := v.Bytes32()
	return db.Set(key, raw[:])
}

// add credits amount to the balance under key.
func (b balances) add(db htlc.KVStore, key []byte, amount uint64) error {
	cur, err := b.get(db, key)
	if err != nil {
		return err
	}
	sum := new(uint256.Int).Add(cur, new(uint256.Int).SetUint64(amount))
	if sum.Lt(cur) {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	return b.set(db, key, sum)
}

// sub debits amount from the balance under key.
func (b balances) sub(db htlc.KVStore, key []byte, amount uint64) error {
	cur, err := b.get(db, key)
	if err != nil {
		return err
	}
	a := new(uint256.Int).SetUint64(amount)
	if cur.Lt(a) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, required %d", cur.ToBig(), amount)
	}
	return b.set(db, key, new(uint256.Int).Sub(cur, a))
}

// move debits from and credits to. Moving to oneself is a balance check.
func (b balances) move(db htlc.KVStore, fromKey, toKey []byte, amount uint64) error {
	if err := b.sub(db, fromKey, amount); err != nil {
		return err
	}
	return b.add(db, toKey, amount)
}

package htlc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/htlc/errors"
)

var (
	// AddressLength is the size of every address. Changing it invalidates
	// all stored swaps.
	AddressLength = 20

	// AddressHRP prefixes bech32 encoded addresses.
	AddressHRP = "htlc"

	// (?s) lets the data section contain any byte, newlines included.
	conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)
)

// Condition names something that can authorize an action, in the form
// "<extension>/<type>/<data>". Signature keys are conditions, and so is
// the custody account that holds escrowed legs. No private key controls
// the latter.
type Condition []byte

func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+len(data)+2)
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits the condition into extension, type and data.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.Wrapf(errors.ErrValidation, "malformed condition %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

func (c Condition) Validate() error {
	_, _, _, err := c.Parse()
	return err
}

// Address derives the principal identified by the condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

func (c Condition) Equals(o Condition) bool {
	return bytes.Equal(c, o)
}

// String prints the data section in hex.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("invalid condition %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// parseCondition reads the form produced by String.
func parseCondition(s string) (Condition, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil, errors.Wrap(errors.ErrValidation, "condition needs three sections")
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrValidation, "condition data: %s", err)
	}
	c := NewCondition(parts[0], parts[1], data)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Address identifies a swap party, an operator or a configuration owner.
// It is the truncated sha256 digest of a condition.
type Address []byte

// NewAddress hashes data into an address. Nil data gives a nil address.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return Address(sum[:AddressLength])
}

func (a Address) Equals(o Address) bool {
	return bytes.Equal(a, o)
}

func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrValidation, "address must be %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// String returns upper case hex, or "(nil)" for an empty address.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return fmt.Sprintf("%X", []byte(a))
}

// Bech32 encodes the address with the AddressHRP prefix.
func (a Address) Bech32() (string, error) {
	words, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrEncoding, err.Error())
	}
	s, err := bech32.Encode(AddressHRP, words)
	if err != nil {
		return "", errors.Wrap(errors.ErrEncoding, err.Error())
	}
	return s, nil
}

// MarshalJSON writes hex instead of the base64 used for byte slices.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.hex())
}

func (a Address) hex() string {
	return strings.ToUpper(hex.EncodeToString(a))
}

// UnmarshalJSON accepts every form ParseAddress does.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrEncoding, "address must be a string")
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress reads an address written by a human, usually in a genesis
// file. Bare values are hex. The prefixes "hex:", "bech32:" and "cond:"
// select a format, where a condition is hashed into its address. An empty
// value gives a nil address.
func ParseAddress(s string) (Address, error) {
	format, value := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, value = s[:i], s[i+1:]
	}
	if value == "" {
		return nil, nil
	}

	var addr Address
	switch format {
	case "hex":
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrValidation, "hex address: %s", err)
		}
		addr = raw
	case "bech32":
		_, words, err := bech32.Decode(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrValidation, "bech32 address: %s", err)
		}
		raw, err := bech32.ConvertBits(words, 5, 8, false)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrValidation, "bech32 payload: %s", err)
		}
		addr = raw
	case "cond":
		c, err := parseCondition(value)
		if err != nil {
			return nil, err
		}
		return c.Address(), nil
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown address format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

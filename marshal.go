package sharing

import (
	"math/big"

	"github.com/renproject/surge"
)

// ShareMessage wraps a single raw share for transmission through a pool.
// Shares are always reduced modulo the scheme's modulus before transmission,
// so only non-negative values are represented.
type ShareMessage struct {
	Value *big.Int
}

// SizeHint implements the surge.SizeHinter interface.
func (m ShareMessage) SizeHint() int {
	if m.Value == nil {
		return surge.SizeHintU32
	}
	return surge.SizeHintU32 + len(m.Value.Bytes())
}

// Marshal implements the surge.Marshaler interface.
func (m ShareMessage) Marshal(buf []byte, rem int) ([]byte, int, error) {
	var bs []byte
	if m.Value != nil {
		bs = m.Value.Bytes()
	}
	buf, rem, err := surge.MarshalU32(uint32(len(bs)), buf, rem)
	if err != nil {
		return buf, rem, err
	}
	if len(buf) < len(bs) || rem < len(bs) {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(buf, bs)
	return buf[len(bs):], rem - len(bs), nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (m *ShareMessage) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	var l uint32
	buf, rem, err := surge.UnmarshalU32(&l, buf, rem)
	if err != nil {
		return buf, rem, err
	}
	if uint64(rem) < uint64(l) {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	if uint64(len(buf)) < uint64(l) {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	m.Value = new(big.Int).SetBytes(buf[:l])
	return buf[l:], rem - int(l), nil
}

// NamesMessage carries a sorted party-name list, used to cross-check that all
// parties agree on the canonical ordering.
type NamesMessage []string

// SizeHint implements the surge.SizeHinter interface.
func (m NamesMessage) SizeHint() int {
	size := surge.SizeHintU32
	for _, name := range m {
		size += surge.SizeHintU32 + len(name)
	}
	return size
}

// Marshal implements the surge.Marshaler interface.
func (m NamesMessage) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := surge.MarshalU32(uint32(len(m)), buf, rem)
	if err != nil {
		return buf, rem, err
	}
	for _, name := range m {
		buf, rem, err = surge.MarshalU32(uint32(len(name)), buf, rem)
		if err != nil {
			return buf, rem, err
		}
		if len(buf) < len(name) || rem < len(name) {
			return buf, rem, surge.ErrUnexpectedEndOfBuffer
		}
		copy(buf, name)
		buf, rem = buf[len(name):], rem-len(name)
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (m *NamesMessage) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	var count uint32
	buf, rem, err := surge.UnmarshalU32(&count, buf, rem)
	if err != nil {
		return buf, rem, err
	}
	if uint64(rem) < uint64(count)*uint64(surge.SizeHintU32) {
		return buf, rem, surge.ErrLengthOverflow
	}

	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var l uint32
		buf, rem, err = surge.UnmarshalU32(&l, buf, rem)
		if err != nil {
			return buf, rem, err
		}
		if uint64(rem) < uint64(l) || uint64(len(buf)) < uint64(l) {
			return buf, rem, surge.ErrUnexpectedEndOfBuffer
		}
		names = append(names, string(buf[:l]))
		buf, rem = buf[l:], rem-int(l)
	}
	*m = names
	return buf, rem, nil
}

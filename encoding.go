package sharing

import (
	"fmt"
	"math/big"
)

// Encoding maps user-facing signed values to the raw algebraic domain of an
// arithmetic scheme: the integers modulo a public modulus. A value v in the
// range [MinValue, MaxValue] is encoded as v mod modulus; decoding maps the
// upper half of [0, modulus) back to negative values.
type Encoding struct {
	modulus  *big.Int
	minValue *big.Int
	maxValue *big.Int
}

// NewEncoding constructs the signed encoding for the given modulus. The
// representable range is [-modulus/2 + 1, modulus/2].
func NewEncoding(modulus *big.Int) (Encoding, error) {
	if modulus == nil || modulus.Cmp(big.NewInt(2)) < 0 {
		return Encoding{}, fmt.Errorf("modulus must be at least 2, got %v", modulus)
	}

	two := big.NewInt(2)
	maxValue := new(big.Int).Div(modulus, two)
	minValue := new(big.Int).Neg(modulus)
	minValue.Div(minValue, two)
	minValue.Add(minValue, big.NewInt(1))

	return Encoding{
		modulus:  new(big.Int).Set(modulus),
		minValue: minValue,
		maxValue: maxValue,
	}, nil
}

// Modulus returns the public modulus. The returned value must not be
// modified.
func (e Encoding) Modulus() *big.Int { return e.modulus }

// MinValue returns the smallest encodable value.
func (e Encoding) MinValue() *big.Int { return e.minValue }

// MaxValue returns the largest encodable value.
func (e Encoding) MaxValue() *big.Int { return e.maxValue }

// Encode maps a signed value into [0, modulus). It returns a DomainError if
// the value lies outside [MinValue, MaxValue].
func (e Encoding) Encode(value *big.Int) (*big.Int, error) {
	if value.Cmp(e.minValue) < 0 || value.Cmp(e.maxValue) > 0 {
		return nil, &DomainError{Min: e.minValue, Max: e.maxValue, Value: new(big.Int).Set(value)}
	}
	return new(big.Int).Mod(value, e.modulus), nil
}

// Decode maps a raw value in [0, modulus) back to the signed range. Values
// above MaxValue are interpreted as negative.
func (e Encoding) Decode(raw *big.Int) *big.Int {
	if raw.Cmp(e.maxValue) <= 0 {
		return new(big.Int).Set(raw)
	}
	return new(big.Int).Sub(raw, e.modulus)
}

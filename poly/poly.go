// Package poly provides polynomials over the ring of integers modulo a
// public modulus, as used for polynomial secret sharing.
package poly

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Poly represents a polynomial with arbitrary-precision integer
// coefficients. It can be indexed into, where index i is the i'th
// coefficient; the constant term is index 0.
//
// Since this type just aliases a slice, all of the considerations of using a
// slice apply: accessing coefficients outside the length bound will panic,
// and modifying the underlying memory through the original slice will be
// reflected in the polynomial.
type Poly []*big.Int

// NewFromSlice constructs a polynomial from a given slice. The coefficients
// of the polynomial are determined by whatever values are currently in the
// slice, and the degree will be one less than the length of the slice.
//
// NOTE: The underlying memory is not copied over from the input slice.
func NewFromSlice(coeffs []*big.Int) Poly {
	return Poly(coeffs)
}

// Random constructs a polynomial of degree k-1 with the given constant term
// and k-1 coefficients drawn independently and uniformly from [0, modulus)
// using a cryptographically secure source. This is the sharing polynomial of
// a degree k-1 secret sharing: the secret is the constant term, and the
// random coefficients hide it.
func Random(constant *big.Int, k int, modulus *big.Int) (Poly, error) {
	if k < 1 {
		return nil, fmt.Errorf("polynomial must have at least 1 coefficient, got k = %d", k)
	}

	coeffs := make([]*big.Int, k)
	coeffs[0] = new(big.Int).Set(constant)
	for i := 1; i < k; i++ {
		c, err := rand.Int(rand.Reader, modulus)
		if err != nil {
			return nil, fmt.Errorf("sampling coefficient %d: %w", i, err)
		}
		coeffs[i] = c
	}
	return Poly(coeffs), nil
}

// Degree returns the degree of the polynomial. This is the exponent of the
// highest term; for example, 3x^2 + 2x + 1 has degree 2.
func (p Poly) Degree() int {
	return len(p) - 1
}

// Coefficient returns the i'th coefficient of the polynomial.
//
// NOTE: If i is greater than the degree of the polynomial, this function
// will panic.
func (p Poly) Coefficient(i int) *big.Int {
	return p[i]
}

// Evaluate computes the value of the polynomial at the point x, reduced
// modulo the given modulus. The result is always in [0, modulus). The
// computation uses Horner's rule.
//
// NOTE: This function panics if the polynomial has no coefficients.
func (p Poly) Evaluate(x, modulus *big.Int) *big.Int {
	y := new(big.Int).Set(p[len(p)-1])
	for i := len(p) - 2; i >= 0; i-- {
		y.Mul(y, x)
		y.Add(y, p[i])
		y.Mod(y, modulus)
	}
	return y.Mod(y, modulus)
}

// Eq returns true if the two polynomials are equal and false if they are
// not. Equality of polynomials is defined as all coefficients being equal.
func (p Poly) Eq(other Poly) bool {
	if p.Degree() != other.Degree() {
		return false
	}
	for i := range p {
		if p[i].Cmp(other[i]) != 0 {
			return false
		}
	}
	return true
}

// String implements the Stringer interface.
func (p Poly) String() string {
	str := fmt.Sprintf("%v", p.Coefficient(0))
	for i := 1; i <= p.Degree(); i++ {
		if i == 1 {
			str += fmt.Sprintf(" + %v x", p.Coefficient(i))
		} else {
			str += fmt.Sprintf(" + %v x^%v", p.Coefficient(i), i)
		}
	}
	return str
}

package sharing

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNoCommunication is returned by any network-requiring operation invoked
// on a scheme that was constructed without a pool. Local operations (sharing,
// encoding, reconstruction over already-known shares) remain available on
// such a scheme.
var ErrNoCommunication = errors.New("scheme is not configured for communication: construct it with a pool to use network operations")

// ErrMissingResharingID is returned by multiplication protocols that need a
// caller-supplied identifier to disambiguate concurrent multiplications
// between the same parties.
var ErrMissingResharingID = errors.New("a resharing id is required and cannot be empty")

// DomainError is returned by Encode when a value lies outside the scheme's
// representable signed range.
type DomainError struct {
	Min, Max, Value *big.Int
}

func (e *DomainError) Error() string {
	return fmt.Sprintf(
		"this encoding scheme only supports values in the range [%v;%v], %v is outside that range",
		e.Min, e.Max, e.Value,
	)
}

// ThresholdError is returned when reconstruction is attempted with fewer
// contributing parties than the scheme's threshold.
type ThresholdError struct {
	Threshold int
	Supplied  int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf(
		"the scheme's threshold is %d, but only %d were supplied",
		e.Threshold, e.Supplied,
	)
}

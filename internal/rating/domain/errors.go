package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRateCardFound means neither the client lookup nor the
// customer+region fallback matched an active group. Fatal to the
// calculation; never defaulted to zero rates.
var ErrNoRateCardFound = errors.New("no active rate card group matches the job context")

var ErrNoLineItems = errors.New("calculation requires at least one line item")

var ErrCalculationNotFound = errors.New("calculation not found")

var ErrNegativeQuantity = errors.New("line quantities must be non-negative")

// UnknownRateCodeError reports requested codes with no active rate
// item. A calculation never proceeds on partial rates.
type UnknownRateCodeError struct {
	Codes []string
}

func (e *UnknownRateCodeError) Error() string {
	return fmt.Sprintf("no rate found for codes: %s", strings.Join(e.Codes, ", "))
}

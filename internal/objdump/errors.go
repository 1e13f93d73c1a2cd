package objdump

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSymbol is matched by every *MissingSymbolError.
	ErrMissingSymbol = errors.New("missing symbol")

	// ErrInvalidAddress reports a recognised label whose address token is
	// not hexadecimal, or an end_testcode address too small to back up from.
	ErrInvalidAddress = errors.New("invalid address")
)

// MissingSymbolError lists the mandatory labels absent from a listing.
type MissingSymbolError struct {
	// Path is the listing file, empty when extracting from a reader.
	Path string

	// Symbols are the missing label names, in canonical order.
	Symbols []string
}

func (e *MissingSymbolError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrMissingSymbol, strings.Join(e.Symbols, ", "))
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

// Is makes errors.Is(err, ErrMissingSymbol) match.
func (e *MissingSymbolError) Is(target error) bool {
	return target == ErrMissingSymbol
}

// IsMissingSymbol reports whether err names the given symbol as missing.
func IsMissingSymbol(err error, symbol string) bool {
	var mse *MissingSymbolError
	if !errors.As(err, &mse) {
		return false
	}
	for _, s := range mse.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

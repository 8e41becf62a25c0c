package dspf

import (
	"errors"
	"fmt"
)

// Display file errors.
var (
	ErrFormatMismatch    = errors.New("dspf: unrecognized display file magic")
	ErrShortRead         = errors.New("dspf: short read")
	ErrShortWrite        = errors.New("dspf: short write")
	ErrOverflow          = errors.New("dspf: value exceeds format field")
	ErrOutOfRange        = errors.New("dspf: value out of range")
	ErrInvalidLightModel = errors.New("dspf: invalid lighting model")
	ErrCorrupt           = errors.New("dspf: corrupt data section")
	ErrStateMisuse       = errors.New("dspf: reader used out of sequence")
)

// FormatError reports a magic string that matches no known version.
type FormatError struct {
	Expected string
	Found    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: expected %q (or legacy %q), found %q",
		ErrFormatMismatch, e.Expected, MagicLegacy, e.Found)
}

// Unwrap lets errors.Is match ErrFormatMismatch.
func (e *FormatError) Unwrap() error {
	return ErrFormatMismatch
}

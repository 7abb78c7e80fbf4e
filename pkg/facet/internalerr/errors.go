package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidDocument        = errors.New("invalid document")
	ErrUnsupportedLanguage    = errors.New("unsupported language")
	ErrMissingLexicalResource = errors.New("missing lexical resource")
	ErrSourceUnavailable      = errors.New("lexical source unavailable")
	ErrFrozen                 = errors.New("preprocessing context is frozen")
)

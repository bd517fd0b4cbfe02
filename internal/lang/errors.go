package lang

import "errors"

// ErrInvalid reports a language hint whose base code is not a supported
// ISO 639-1 code.
var ErrInvalid = errors.New("invalid language code")

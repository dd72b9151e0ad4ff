package gate

import "errors"

// ErrWrongCode is returned by Unlock when the code does not match.
var ErrWrongCode = errors.New("wrong access code")

package board

import "errors"

var ErrValidation = errors.New("validation error")

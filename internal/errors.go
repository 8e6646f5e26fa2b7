package internal

import (
	"fmt"
)

var (
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrBadRequest   = fmt.Errorf("bad request")

	ErrDuplicate = fmt.Errorf("duplicate record")
	ErrNotFound  = fmt.Errorf("record not found")
)

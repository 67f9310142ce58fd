package resolve

import "errors"

var (
	// ErrValueDomainRequired is returned when a value domain is not provided.
	ErrValueDomainRequired = errors.New("value domain required")
)

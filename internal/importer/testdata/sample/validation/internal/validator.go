package internal

import (
	"errors"

	"example.org/sample/validation/api"
)

// ErrEmptyID is returned for blank identifiers.
var ErrEmptyID = errors.New("empty id")

// IdValidatorImpl rejects empty identifiers.
type IdValidatorImpl struct{}

var _ api.IdValidator = IdValidatorImpl{}

func (IdValidatorImpl) Validate(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return nil
}

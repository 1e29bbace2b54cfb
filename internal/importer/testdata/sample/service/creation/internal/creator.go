package internal

import (
	"example.org/sample/service/api"
	validation "example.org/sample/validation/api"
)

// ServiceCreatorImpl validates the id before creating a service.
type ServiceCreatorImpl struct {
	validator validation.IdValidator
}

// NewServiceCreator returns a creator using v.
func NewServiceCreator(v validation.IdValidator) *ServiceCreatorImpl {
	return &ServiceCreatorImpl{validator: v}
}

func (c *ServiceCreatorImpl) Create(s *api.Service) error {
	return c.validator.Validate(s.ID)
}

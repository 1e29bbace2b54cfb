package internal

import (
	"example.org/sample/service/api"
	creation "example.org/sample/service/creation/api"
)

// ServiceServiceImpl delegates creation to a ServiceCreator.
type ServiceServiceImpl struct {
	creator creation.ServiceCreator
	helper  *ServiceServiceHelper
}

var _ api.ServiceService = (*ServiceServiceImpl)(nil)

// NewServiceService wires the default implementation.
func NewServiceService(creator creation.ServiceCreator) *ServiceServiceImpl {
	return &ServiceServiceImpl{creator: creator, helper: &ServiceServiceHelper{}}
}

func (s *ServiceServiceImpl) Get(id string) (*api.Service, error) {
	s.helper.Help()
	return nil, nil
}

func (s *ServiceServiceImpl) Create(svc *api.Service) error {
	return s.creator.Create(svc)
}

package api

import "example.org/sample/service/api"

// ServiceCreator creates services.
type ServiceCreator interface {
	Create(s *api.Service) error
}

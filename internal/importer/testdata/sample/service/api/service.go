package api

// Service is a registered service.
type Service struct {
	ID   string
	Name string
}

// ServiceService creates and looks up services.
type ServiceService interface {
	Get(id string) (*Service, error)
	Create(s *Service) error
}

package internal

// ServiceServiceHelper is private to the service module.
type ServiceServiceHelper struct{}

func (h *ServiceServiceHelper) Help() {}

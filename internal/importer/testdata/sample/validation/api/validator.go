package api

// IdValidator checks service identifiers.
type IdValidator interface {
	Validate(id string) error
}

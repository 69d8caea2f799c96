package domain

// AdapterFactory builds a Backend for one provider name.
type AdapterFactory interface {
	Provider() string
	NewBackend() (Backend, error)
}

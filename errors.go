package embedkit

import "errors"

var (
	// ErrNotInitialized indicates an operation was called before an encoder
	// was bound to the service. This is a programmer error and is always
	// surfaced.
	ErrNotInitialized = errors.New("embedkit: service not initialized")

	// ErrAlreadyInitialized indicates Initialize was called on a service
	// that already has an encoder bound. Binding is one-way.
	ErrAlreadyInitialized = errors.New("embedkit: encoder already bound")

	// ErrModelMismatch indicates a loaded collection's declared dimension
	// does not match the service's configured encoder.
	ErrModelMismatch = errors.New("embedkit: model mismatch")
)

package bridge

import "errors"

// Common errors
var (
	// ErrAlreadyRegistered indicates a class name is already defined.
	ErrAlreadyRegistered = errors.New("maxgo: class has already been initialized")

	// ErrClassFinalized indicates a method was added after registration.
	ErrClassFinalized = errors.New("maxgo: class already registered")

	// ErrUnknownClass indicates an object was requested for an undefined or
	// unregistered class.
	ErrUnknownClass = errors.New("maxgo: unknown class")

	// ErrInitFailed indicates the runtime returned handle 0.
	ErrInitFailed = errors.New("maxgo: object initialization failed")

	// ErrTooManyInlets indicates the runtime requested more proxies than the
	// host allows.
	ErrTooManyInlets = errors.New("maxgo: too many inlets")

	// ErrQueueFull indicates an event was rejected by a bounded queue.
	ErrQueueFull = errors.New("maxgo: event queue is full")

	// ErrQueueClosed indicates an event was pushed after the object was freed.
	ErrQueueClosed = errors.New("maxgo: event queue is closed")

	// ErrStaleHandle indicates a handle was used outside its lifetime.
	ErrStaleHandle = errors.New("maxgo: stale handle")
)

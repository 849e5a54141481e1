//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"errors"

	"github.com/obinnaokechukwu/maxgo/bridge"
)

// Common errors
var (
	// ErrNotLoaded indicates the host library could not be loaded.
	ErrNotLoaded = errors.New("maxgo: host library not loaded")

	// ErrInvalidPrototype indicates Register was called with a value that is
	// not a pointer to a struct.
	ErrInvalidPrototype = errors.New("maxgo: prototype must be a pointer to a struct")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("maxgo: invalid configuration")

	// ErrNoClass indicates a thread hop was requested before any class was
	// registered.
	ErrNoClass = errors.New("maxgo: no class registered")
)

// Errors re-exported from the bridge.
var (
	// ErrAlreadyRegistered indicates a class name is already defined.
	ErrAlreadyRegistered = bridge.ErrAlreadyRegistered

	// ErrQueueFull indicates an event was dropped by a full object queue.
	ErrQueueFull = bridge.ErrQueueFull

	// ErrQueueClosed indicates an event was pushed after the object was freed.
	ErrQueueClosed = bridge.ErrQueueClosed
)

//go:build !ios && !android && (amd64 || arm64)

package host

import (
	"fmt"

	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/internal/bindings"
	"github.com/obinnaokechukwu/maxgo/internal/shim"
)

// RegisterClass creates the host class for spec. Before the host has called
// the external's entry point, the class is queued and registered from the
// entry callback.
func (h *Host) RegisterClass(spec bridge.ClassSpec) error {
	if err := h.ready(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.knownLocked(spec.Name) {
		return fmt.Errorf("maxgo: host class %q already exists", spec.Name)
	}

	if !h.entered {
		h.pending = append(h.pending, spec)
		h.log.Debug("class registration queued", "class", spec.Name)
		return nil
	}
	return h.registerLocked(spec)
}

func (h *Host) knownLocked(name string) bool {
	if _, ok := h.classes[name]; ok {
		return true
	}
	for _, spec := range h.pending {
		if spec.Name == name {
			return true
		}
	}
	return false
}

// start registers queued classes at once when the shim cannot forward
// ext_main or when Open runs on the main thread.
func (h *Host) start(entryErr error, mainThread bool) {
	switch {
	case entryErr != nil:
		h.log.Debug("shim entry unavailable", "error", entryErr)
		h.enter()
	case mainThread:
		h.enter()
	}
}

// enter registers queued classes in the order they were queued. It runs on
// the main thread from ext_main; later registrations are immediate.
func (h *Host) enter() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entered = true
	pending := h.pending
	h.pending = nil

	for _, spec := range pending {
		if err := h.registerLocked(spec); err != nil {
			h.log.Error("class registration failed", "class", spec.Name, "error", err)
			h.Error(err.Error())
		}
	}
}

func (h *Host) registerLocked(spec bridge.ClassSpec) error {
	c, err := h.create(spec)
	if err != nil {
		return err
	}
	h.classes[spec.Name] = c
	h.log.Debug("class registered", "class", spec.Name, "methods", len(spec.Methods))
	return nil
}

func shimReady() error {
	if !shim.IsLoaded() {
		return fmt.Errorf("%w: %s", shim.ErrShimNotLoaded, shim.BuildInstructions())
	}
	return nil
}

// createClass builds and registers a host class through the shim.
func (h *Host) createClass(spec bridge.ClassSpec) (uintptr, error) {
	size := int64(h.header) + inletSlotSize

	c, err := shim.ClassNew(spec.Name, cb.new, cb.free, size)
	if err != nil {
		return 0, err
	}

	for _, m := range spec.Methods {
		fn, argType, err := methodFor(m.Entry)
		if err != nil {
			return 0, fmt.Errorf("maxgo: class %s: %w", spec.Name, err)
		}
		if err := shim.ClassAddMethod(c, fn, m.Selector, argType); err != nil {
			return 0, err
		}
	}

	if rc := bindings.ClassRegister(c); rc != 0 {
		return 0, fmt.Errorf("%w: class_register %s returned %d", ErrHostCall, spec.Name, rc)
	}
	return c, nil
}

// methodFor maps an entry point to its callback and method argument type.
func methodFor(e bridge.Entry) (uintptr, int16, error) {
	switch e {
	case bridge.EntryBang:
		return cb.bang, bindings.ArgNothing, nil
	case bridge.EntryInt:
		return cb.int, bindings.ArgLong, nil
	case bridge.EntryFloat:
		return cb.float, bindings.ArgFloat, nil
	case bridge.EntryGimme:
		return cb.gimme, bindings.ArgGimme, nil
	case bridge.EntryLoadbang:
		return cb.loadbang, bindings.ArgCant, nil
	case bridge.EntryDblClick:
		return cb.dblclick, bindings.ArgCant, nil
	case bridge.EntryAssist:
		return cb.assist, bindings.ArgCant, nil
	case bridge.EntryInletInfo:
		return cb.inletinfo, bindings.ArgCant, nil
	default:
		return 0, 0, fmt.Errorf("unknown entry %d", int(e))
	}
}

func (h *Host) class(name string) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.classes[name]
}

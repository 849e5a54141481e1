//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"reflect"
	"sync"
)

// Instance is a generic object instance. A fresh value of the prototype's
// type is allocated for every object.
type Instance interface {
	Init(obj *Object, args []Atom) bool
	Handle(inlet int, msg string, data []Atom)
	Free()
}

// AdvancedInstance is an object that responds to advanced messages.
type AdvancedInstance interface {
	Loaded()
	DoubleClicked()
}

// instanceBox serializes the callbacks of one instance.
type instanceBox struct {
	mu   sync.Mutex
	inst Instance
}

// Register will register a class using the provided prototype. Instance
// methods of one object never run in parallel.
func (e *Env) Register(name string, prototype Instance) error {
	typ := reflect.TypeOf(prototype)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return ErrInvalidPrototype
	}
	typ = typ.Elem()

	var mu sync.Mutex
	instances := map[*Object]*instanceBox{}

	lookup := func(obj *Object) *instanceBox {
		mu.Lock()
		defer mu.Unlock()
		return instances[obj]
	}

	init := func(obj *Object, args []Atom) bool {
		inst := reflect.New(typ).Interface().(Instance)
		if !inst.Init(obj, args) {
			return false
		}

		mu.Lock()
		instances[obj] = &instanceBox{inst: inst}
		mu.Unlock()
		return true
	}

	handle := func(obj *Object, inlet int, msg string, args []Atom) {
		box := lookup(obj)
		if box == nil {
			return
		}

		box.mu.Lock()
		defer box.mu.Unlock()

		switch msg {
		case "loadbang", "dblclick":
			adv, ok := box.inst.(AdvancedInstance)
			if !ok {
				return
			}
			if msg == "loadbang" {
				adv.Loaded()
			} else {
				adv.DoubleClicked()
			}
		default:
			box.inst.Handle(inlet, msg, args)
		}
	}

	free := func(obj *Object) {
		mu.Lock()
		box := instances[obj]
		delete(instances, obj)
		mu.Unlock()

		if box == nil {
			return
		}

		box.mu.Lock()
		defer box.mu.Unlock()
		box.inst.Free()
	}

	return e.Init(name, init, handle, free)
}

// Register will register a class with the process-wide environment.
func Register(name string, prototype Instance) error {
	env, err := Default()
	if err != nil {
		return err
	}
	return env.Register(name, prototype)
}

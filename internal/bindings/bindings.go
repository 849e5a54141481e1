//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the host API library and registering
// function bindings using purego.
//
// Only the non-variadic part of the API is bound here. Variadic entry
// points (console output, class creation) go through internal/shim.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/maxgo/internal/platform"
)

// LibraryName is the base name of the host API library.
const LibraryName = "MaxAPI"

// LibraryPathEnv names an environment variable with extra directories to
// search for the host API library.
const LibraryPathEnv = "MAXGO_LIBRARY_PATH"

// ErrNotLoaded is returned when host functions are called before Load().
var ErrNotLoaded = errors.New("maxgo: host library not loaded; call maxgo.Load() first")

// ErrLibraryNotFound is returned when the host API library cannot be found.
var ErrLibraryNotFound = errors.New("maxgo: host library not found")

// ErrSymbolNotFound is returned when a required function is missing from
// the loaded library.
var ErrSymbolNotFound = errors.New("maxgo: host symbol not found")

var (
	libMax  uintptr
	libPath string

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Function bindings
var (
	gensym func(name string) uintptr

	objectAlloc func(class uintptr) uintptr
	objectFree  func(obj uintptr) int64

	proxyNew      func(obj uintptr, id int64, stuffloc uintptr) uintptr
	proxyGetInlet func(obj uintptr) int64

	bangout  func(obj uintptr) uintptr
	intout   func(obj uintptr) uintptr
	floatout func(obj uintptr) uintptr
	listout  func(obj uintptr) uintptr

	outletNew      func(obj uintptr, typ uintptr) uintptr
	outletBang     func(o uintptr) uintptr
	outletInt      func(o uintptr, n int64) uintptr
	outletFloat    func(o uintptr, f float64) uintptr
	outletList     func(o uintptr, s uintptr, argc int16, argv uintptr) uintptr
	outletAnything func(o uintptr, s uintptr, argc int16, argv uintptr) uintptr

	clockNew   func(obj uintptr, fn uintptr) uintptr
	clockDelay func(c uintptr, ms int64)
	clockUnset func(c uintptr)

	classRegister func(nameSpace uintptr, c uintptr) int64

	deferLow func(obj uintptr, fn uintptr, s uintptr, argc int16, argv uintptr)

	getbytes  func(size uint64) uintptr
	freebytes func(p uintptr, size uint64)

	systhreadIsMainThread func() int16
)

// IsLoaded returns true if the host library has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Path returns the path the library was loaded from.
func Path() string {
	return libPath
}

// Load loads the host API library and registers all function bindings.
// explicit, if not empty, is tried before the search paths.
// It is safe to call multiple times; subsequent calls are no-ops.
func Load(explicit string) error {
	loadOnce.Do(func() {
		loadErr = doLoad(explicit)
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad(explicit string) error {
	var err error

	libMax, libPath, err = loadLibrary(LibraryName, explicit)
	if err != nil {
		return fmt.Errorf("loading %s: %w", LibraryName, err)
	}

	return registerBindings(libMax)
}

func registerBindings(lib uintptr) error {
	bindings := []struct {
		fptr any
		name string
	}{
		{&gensym, "gensym"},
		{&objectAlloc, "object_alloc"},
		{&objectFree, "object_free"},
		{&proxyNew, "proxy_new"},
		{&proxyGetInlet, "proxy_getinlet"},
		{&bangout, "bangout"},
		{&intout, "intout"},
		{&floatout, "floatout"},
		{&listout, "listout"},
		{&outletNew, "outlet_new"},
		{&outletBang, "outlet_bang"},
		{&outletInt, "outlet_int"},
		{&outletFloat, "outlet_float"},
		{&outletList, "outlet_list"},
		{&outletAnything, "outlet_anything"},
		{&clockNew, "clock_new"},
		{&clockDelay, "clock_delay"},
		{&clockUnset, "clock_unset"},
		{&classRegister, "class_register"},
		{&deferLow, "defer_low"},
		{&getbytes, "getbytes"},
		{&freebytes, "freebytes"},
		{&systhreadIsMainThread, "systhread_ismainthread"},
	}

	var missing []error
	for _, b := range bindings {
		addr, err := purego.Dlsym(lib, b.name)
		if err != nil || addr == 0 {
			missing = append(missing, fmt.Errorf("%w: %s", ErrSymbolNotFound, b.name))
			continue
		}
		purego.RegisterFunc(b.fptr, addr)
	}

	return errors.Join(missing...)
}

// loadLibrary attempts to load a library, trying the explicit path first.
func loadLibrary(name, explicit string) (uintptr, string, error) {
	if explicit != "" {
		lib, err := tryOpen(explicit)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, explicit, err)
		}
		return lib, explicit, nil
	}

	names := platform.LibraryNames(name)

	// Try each search path
	for _, searchPath := range LibrarySearchPaths() {
		for _, libName := range names {
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err != nil {
				continue
			}
			if lib, err := tryOpen(fullPath); err == nil {
				return lib, fullPath, nil
			}
		}
	}

	// Try just the library name (let the system find it)
	for _, libName := range names {
		if lib, err := tryOpen(libName); err == nil {
			return lib, libName, nil
		}
	}

	return 0, "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for a library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string) (string, error) {
	names := platform.LibraryNames(name)
	for _, searchPath := range LibrarySearchPaths() {
		for _, libName := range names {
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	// Explicit override first
	if p := os.Getenv(LibraryPathEnv); p != "" {
		paths = append(paths, filepath.SplitList(p)...)
	}

	// The host loads externals from its own process; its API library sits
	// next to the executable.
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Dir(exe))
	}

	switch runtime.GOOS {
	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/Applications/Max.app/Contents/Frameworks",
			"/Applications/Max.app/Contents/Resources/C74/packages/max-sdk/source/c74support/max-includes",
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		paths = append(paths,
			"C:\\Program Files\\Cycling '74\\Max 9",
			"C:\\Program Files\\Cycling '74\\Max 8",
		)

	default:
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

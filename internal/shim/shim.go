//go:build !ios && !android && (amd64 || arm64)

// Package shim provides bindings to the maxgoshim helper library.
//
// The shim is a small C library that wraps host functionality that purego
// cannot call directly:
//   - Variadic console functions (post, error, ouchstring)
//   - Variadic class construction (class_new, class_addmethod)
//   - The ext_main entry point the host calls when loading an external,
//     which loads the Go library when the shim is built as its executable
//
// Console output works without the shim (it falls back to stderr). Class
// registration requires it.
//
// To build the shim for your platform:
//
//	cd shim && make
package shim

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

// ShimDirEnv names the environment variable overriding the shim location.
const ShimDirEnv = "MAXGO_SHIM_DIR"

// ShimPathEnv names the shim image. The shim sets it before loading the Go
// library when it is the external's executable.
const ShimPathEnv = "MAXGO_SHIM_PATH"

// ErrShimNotLoaded is returned when shim functions are called but the shim is not available.
var ErrShimNotLoaded = errors.New("maxgo: shim library not loaded; class registration unavailable")

// ErrShimNotFound is returned when the shim library cannot be found.
var ErrShimNotFound = errors.New("maxgo: shim library not found")

var (
	libShim  uintptr
	loaded   bool
	loadErr  error
	loadMu   sync.Mutex
	shimPath string // Path where shim was found (for diagnostics)

	// Function bindings
	shimPost           func(msg string)
	shimError          func(msg string)
	shimAlert          func(msg string)
	shimClassNew       func(name string, mnew, mfree uintptr, size int64) uintptr
	shimClassAddMethod func(c, m uintptr, name string, argType int16)
	shimObjectSize     func() int64
	shimSetEntry       func(fn uintptr)
)

// Load attempts to load the maxgoshim library.
// Returns nil if already loaded or if shim is not available.
// explicit, if not empty, is the path to try before searching.
//
// The shim is searched for in the following locations (in order):
//  1. MAXGO_SHIM_PATH environment variable
//  2. MAXGO_SHIM_DIR environment variable
//  3. LD_LIBRARY_PATH / DYLD_LIBRARY_PATH / PATH
//  4. Executable directory
//  5. Standard library paths (/usr/local/lib, /usr/lib)
//  6. Module's shim/ directory
//  7. Current working directory
func Load(explicit string) error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return nil
	}
	if loadErr != nil {
		return loadErr
	}

	path := explicit
	if path == "" {
		var err error
		path, err = findShimLibrary()
		if err != nil {
			// Shim is optional, so don't fail - but save detailed error for diagnostics
			loadErr = err
			return nil
		}
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		loadErr = fmt.Errorf("failed to load shim at %s: %w", path, err)
		return nil
	}

	libShim = lib
	shimPath = path
	registerBindings()
	loaded = true
	return nil
}

// IsLoaded returns true if the shim library was successfully loaded.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loaded
}

// Path returns the path where the shim was loaded from, or empty string if not loaded.
func Path() string {
	loadMu.Lock()
	defer loadMu.Unlock()
	return shimPath
}

// LoadError returns detailed error information if the shim failed to load.
// Returns nil if shim loaded successfully or Load() hasn't been called.
func LoadError() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loadErr
}

// Status returns a human-readable status of the shim library.
// Useful for diagnostics and logging.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return fmt.Sprintf("loaded from %s", shimPath)
	}
	if loadErr != nil {
		return fmt.Sprintf("not loaded: %s", loadErr)
	}
	return "not loaded (Load() not called)"
}

// ExpectedLibraryName returns the expected shim library filename for the current platform.
func ExpectedLibraryName() string {
	return platform.FormatLibraryName("maxgoshim", 0)
}

// BuildInstructions returns platform-specific instructions for building the shim.
func BuildInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return `To build the shim on macOS:
  1. Download the Max SDK and set MAX_SDK to its path
  2. Build the shim:
     cd shim && make
  3. Place libmaxgoshim.dylib next to the external or set:
     export MAXGO_SHIM_DIR=$PWD/shim`
	case "windows":
		return `To build the shim on Windows:
  1. Install MSYS2 and MinGW-w64
  2. Download the Max SDK and set MAX_SDK to its path
  3. Build the shim:
     cd shim && make
  4. Copy maxgoshim.dll next to the external or set MAXGO_SHIM_DIR`
	default:
		return fmt.Sprintf("Platform %s/%s is not supported by the host; the shim can only be built for development", runtime.GOOS, runtime.GOARCH)
	}
}

func registerBindings() {
	if libShim == 0 {
		return
	}

	registerOptionalLibFunc(&shimPost, libShim, "maxgo_post")
	registerOptionalLibFunc(&shimError, libShim, "maxgo_error")
	registerOptionalLibFunc(&shimAlert, libShim, "maxgo_alert")
	registerOptionalLibFunc(&shimClassNew, libShim, "maxgo_class_new")
	registerOptionalLibFunc(&shimClassAddMethod, libShim, "maxgo_class_addmethod")
	registerOptionalLibFunc(&shimObjectSize, libShim, "maxgo_object_size")
	registerOptionalLibFunc(&shimSetEntry, libShim, "maxgo_set_entry")
}

func registerOptionalLibFunc(fptr any, handle uintptr, name string) {
	defer func() {
		_ = recover() // purego.RegisterLibFunc panics if symbol is missing
	}()
	purego.RegisterLibFunc(fptr, handle, name)
}

// Post prints msg to the host console.
func Post(msg string) error {
	if !IsLoaded() || shimPost == nil {
		return fmt.Errorf("%w: Post", ErrShimNotLoaded)
	}
	shimPost(msg)
	return nil
}

// Error prints msg to the host console as an error.
func Error(msg string) error {
	if !IsLoaded() || shimError == nil {
		return fmt.Errorf("%w: Error", ErrShimNotLoaded)
	}
	shimError(msg)
	return nil
}

// Alert shows msg in a modal dialog.
func Alert(msg string) error {
	if !IsLoaded() || shimAlert == nil {
		return fmt.Errorf("%w: Alert", ErrShimNotLoaded)
	}
	shimAlert(msg)
	return nil
}

// ClassNew creates a class whose constructor takes a gimme argument list.
func ClassNew(name string, mnew, mfree uintptr, size int64) (uintptr, error) {
	if !IsLoaded() || shimClassNew == nil {
		return 0, fmt.Errorf("%w: ClassNew requires shim; %s", ErrShimNotLoaded, BuildInstructions())
	}
	c := shimClassNew(name, mnew, mfree, size)
	if c == 0 {
		return 0, fmt.Errorf("maxgo: class_new failed for %s", name)
	}
	return c, nil
}

// ClassAddMethod adds a method taking a single argument of argType, or none
// if argType is zero.
func ClassAddMethod(c, m uintptr, name string, argType int16) error {
	if !IsLoaded() || shimClassAddMethod == nil {
		return fmt.Errorf("%w: ClassAddMethod", ErrShimNotLoaded)
	}
	shimClassAddMethod(c, m, name, argType)
	return nil
}

// ObjectSize returns the size of the host object header, or fallback if
// the shim cannot report it.
func ObjectSize(fallback int64) int64 {
	if !IsLoaded() || shimObjectSize == nil {
		return fallback
	}
	if n := shimObjectSize(); n > 0 {
		return n
	}
	return fallback
}

// SetEntry installs the function the shim's ext_main calls once the host
// loads the external. If ext_main has already returned, the shim calls fn
// before SetEntry returns. fn is a purego callback taking no arguments.
func SetEntry(fn uintptr) error {
	if !IsLoaded() || shimSetEntry == nil {
		return fmt.Errorf("%w: SetEntry", ErrShimNotLoaded)
	}
	shimSetEntry(fn)
	return nil
}

func findShimLibrary() (string, error) {
	var names []string

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		names = []string{"libmaxgoshim.so", "libmaxgoshim.so.1"}
	case "darwin":
		names = []string{"libmaxgoshim.dylib", "libmaxgoshim.1.dylib"}
	case "windows":
		names = []string{"maxgoshim.dll", "libmaxgoshim.dll"}
	default:
		return "", fmt.Errorf("%w: unsupported platform %s/%s", ErrShimNotFound, runtime.GOOS, runtime.GOARCH)
	}

	// the external's own executable (highest priority)
	if path := os.Getenv(ShimPathEnv); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s=%s: %v", ErrShimNotFound, ShimPathEnv, path, err)
		}
		return path, nil
	}

	// MAXGO_SHIM_DIR override
	if dir := os.Getenv(ShimDirEnv); dir != "" {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: %s=%s does not contain %s", ErrShimNotFound, ShimDirEnv, dir, names[0])
	}

	var searchPaths []string
	var searchedPaths []string // For error message

	switch runtime.GOOS {
	case "darwin":
		if p := os.Getenv("DYLD_LIBRARY_PATH"); p != "" {
			searchPaths = append(searchPaths, filepath.SplitList(p)...)
		}
	case "windows":
		if p := os.Getenv("PATH"); p != "" {
			searchPaths = append(searchPaths, filepath.SplitList(p)...)
		}
	default:
		if p := os.Getenv("LD_LIBRARY_PATH"); p != "" {
			searchPaths = append(searchPaths, filepath.SplitList(p)...)
		}
	}

	// Executable directory
	if exe, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Dir(exe))
	}

	searchPaths = append(searchPaths, "/usr/local/lib", "/usr/lib")

	// Module-local shim (dev/test)
	if _, file, _, ok := runtime.Caller(0); ok {
		// internal/shim/shim.go -> <module_root>
		moduleRoot := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
		searchPaths = append(searchPaths, filepath.Join(moduleRoot, "shim"))
	}

	// Current working directory
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	for _, name := range names {
		for _, dir := range searchPaths {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
			searchedPaths = append(searchedPaths, path)
		}
	}

	return "", fmt.Errorf("%w: looked for %s in %d locations. Set %s or build the shim: cd shim && make",
		ErrShimNotFound, names[0], len(searchedPaths), ShimDirEnv)
}

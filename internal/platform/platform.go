//go:build !ios && !android && (amd64 || arm64)

// Package platform provides platform detection and library naming for
// maxgo.
package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// maxgo only supports 64-bit platforms: the host atom layout and handle
// passing through pointer arguments assume 8-byte words.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("maxgoshim", 1) -> "libmaxgoshim.so.1"
//   - macOS:   FormatLibraryName("maxgoshim", 1) -> "libmaxgoshim.1.dylib"
//   - Windows: FormatLibraryName("maxgoshim", 1) -> "maxgoshim-1.dll"
func FormatLibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	}
}

// FrameworkBinary returns the path of the binary inside a macOS framework
// bundle, e.g. "MaxAPI.framework/MaxAPI".
func FrameworkBinary(name string) string {
	return filepath.Join(name+".framework", name)
}

// LibraryNames returns the candidate filenames for a library, most specific
// first. On macOS frameworks are tried before plain dylibs.
func LibraryNames(name string, versions ...int) []string {
	var names []string
	if runtime.GOOS == "darwin" {
		names = append(names, FrameworkBinary(name))
	}
	for _, v := range versions {
		if v > 0 {
			names = append(names, FormatLibraryName(name, v))
		}
	}
	return append(names, FormatLibraryName(name, 0))
}

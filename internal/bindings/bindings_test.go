//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLibrarySearchPaths(t *testing.T) {
	paths := LibrarySearchPaths()
	if len(paths) == 0 {
		t.Error("LibrarySearchPaths should return at least one path")
	}
}

func TestLibrarySearchPathsHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(LibraryPathEnv, dir)

	paths := LibrarySearchPaths()
	if paths[0] != dir {
		t.Errorf("expected %s first, got %v", dir, paths)
	}
}

func TestFindLibrary(t *testing.T) {
	// The host library is only present inside the host application.
	_, err := FindLibrary(LibraryName)
	if err != nil {
		t.Logf("host library not found (expected outside the host): %v", err)
	}
}

func TestLoadLibraryExplicitMissing(t *testing.T) {
	_, _, err := loadLibrary(LibraryName, filepath.Join(t.TempDir(), "missing.so"))
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound, got %v", err)
	}
}

func TestNotLoaded(t *testing.T) {
	if IsLoaded() {
		t.Skip("host library is loaded")
	}

	if Gensym("x") != 0 {
		t.Error("Gensym should return 0 before Load")
	}
	if ObjectAlloc(1) != 0 {
		t.Error("ObjectAlloc should return 0 before Load")
	}
	if Getbytes(16) != 0 {
		t.Error("Getbytes should return 0 before Load")
	}
	if IsMainThread() {
		t.Error("IsMainThread should be false before Load")
	}

	// these must not crash
	OutletBang(1)
	ClockDelay(1, 0)
	Freebytes(1, 16)
}

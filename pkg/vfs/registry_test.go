package vfs_test

import (
	"sync"
	"testing"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

func TestRegistrySet(t *testing.T) {
	first := backend.NewMemfs()
	second := backend.NewMemfs()
	r := vfs.NewRegistry(first)

	if r.Current() != backend.VirtualFileSystem(first) {
		t.Fatal("Expected the initial backend to be current")
	}

	r.Set(second)
	if r.Current() != backend.VirtualFileSystem(second) {
		t.Error("Expected Set to install the new backend")
	}
	if r.Swaps() != 1 {
		t.Errorf("Expected 1 swap, got %d", r.Swaps())
	}

	// Set never compares: installing the same kind again still swaps.
	r.Set(backend.NewMemfs())
	if r.Swaps() != 2 {
		t.Errorf("Expected 2 swaps, got %d", r.Swaps())
	}
}

func TestRegistryNonRetroactive(t *testing.T) {
	r := vfs.NewRegistry(backend.NewMemfs())

	held := r.Current()
	if _, err := held.MkdirP("/kept"); err != nil {
		t.Fatalf("MkdirP failed: %v", err)
	}

	r.Set(backend.NewMemfs())

	if !held.Exists("/kept") {
		t.Error("Expected the held handle to keep its backend")
	}
	if r.Current().Exists("/kept") {
		t.Error("Expected the new backend to be fresh")
	}
}

func TestRegistrySetKind(t *testing.T) {
	r := vfs.NewRegistry(backend.NewStdfs())

	if r.SetStdfs() {
		t.Error("Expected SetStdfs on a Stdfs registry to do nothing")
	}
	if r.Swaps() != 0 {
		t.Errorf("Expected no swaps, got %d", r.Swaps())
	}

	if !r.SetMemfs() {
		t.Fatal("Expected SetMemfs to swap")
	}
	if r.Kind() != backend.KindMemfs {
		t.Errorf("Expected memfs, got %s", r.Kind())
	}

	// A second SetMemfs must keep the existing Memfs and its content.
	held := r.Current()
	held.MkdirP("/data")
	if r.SetMemfs() {
		t.Error("Expected SetMemfs on a Memfs registry to do nothing")
	}
	if r.Current() != held || !r.Current().Exists("/data") {
		t.Error("Expected the installed Memfs to be kept")
	}

	if !r.SetStdfs() {
		t.Fatal("Expected SetStdfs to swap")
	}
	if r.Kind() != backend.KindStdfs {
		t.Errorf("Expected SetStdfs to install stdfs, got %s", r.Kind())
	}
	if r.Swaps() != 2 {
		t.Errorf("Expected 2 swaps, got %d", r.Swaps())
	}
}

func TestRegistryNil(t *testing.T) {
	r := vfs.NewRegistry(nil)
	if r.Kind() != backend.KindUnknown {
		t.Errorf("Expected unknown kind for an empty registry, got %s", r.Kind())
	}
	if !r.SetStdfs() || r.Kind() != backend.KindStdfs {
		t.Error("Expected SetStdfs to fill an empty registry")
	}
}

func TestRegistryConcurrentSetMemfs(t *testing.T) {
	r := vfs.NewRegistry(backend.NewStdfs())

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		swapped int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.SetMemfs() {
				mu.Lock()
				swapped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if swapped != 1 {
		t.Errorf("Expected exactly one goroutine to swap, got %d", swapped)
	}
	if r.Swaps() != 1 {
		t.Errorf("Expected 1 swap, got %d", r.Swaps())
	}
}

func TestRegistryConcurrentReaders(t *testing.T) {
	r := vfs.NewRegistry(backend.NewMemfs())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%4 == 0 {
					r.Set(backend.NewMemfs())
					continue
				}
				if r.Current() == nil {
					t.Error("Expected a backend to always be installed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

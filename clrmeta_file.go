package clrmeta

import (
	"errors"
	"fmt"

	"github.com/MaximumOverflow/clrmeta/clrmodel"
	"github.com/MaximumOverflow/clrmeta/peaccess"
)

// ErrNotManaged is returned when a PE file carries no CLR data directory
// (it is a native image, not a managed assembly).
var ErrNotManaged = errors.New("clrmeta: file carries no CLR data directory")

// openManaged memory-maps path, parses its PE headers, and returns the
// file (still open) plus its CLR data directory RVA. Callers must Close
// the returned file.
func openManaged(path string) (*peaccess.File, uint32, error) {
	f, err := peaccess.New(path, nil)
	if err != nil {
		return nil, 0, err
	}
	if err := f.Parse(); err != nil {
		f.Close()
		return nil, 0, err
	}
	rva, _, ok := f.CLRDataDirectory()
	if !ok {
		f.Close()
		return nil, 0, ErrNotManaged
	}
	return f, rva, nil
}

// LoadAssemblyFromFile memory-maps path and loads its structured Assembly,
// without resolving any of its AssemblyRef entries (use
// resolver.Context.LoadAssembly for that).
func LoadAssemblyFromFile(path string) (*clrmodel.Assembly, error) {
	f, rva, err := openManaged(path)
	if err != nil {
		return nil, fmt.Errorf("clrmeta: %s: %w", path, err)
	}
	defer f.Close()
	return LoadAssembly(f, rva)
}

// ReadAssemblyNameFromFile memory-maps path just long enough to extract its
// defining AssemblyName, then closes it. This is the probe the default
// resolver uses to index and compare candidate files by identity
// (spec.md §4.9 step 3).
func ReadAssemblyNameFromFile(path string) (clrmodel.AssemblyName, error) {
	f, rva, err := openManaged(path)
	if err != nil {
		return clrmodel.AssemblyName{}, fmt.Errorf("clrmeta: %s: %w", path, err)
	}
	defer f.Close()
	return ReadAssemblyName(f, rva)
}

// RefNamesFromFile memory-maps path and extracts the AssemblyName of every
// row of its AssemblyRef table, without populating any types. This is what
// a Context walks to discover which assemblies it must resolve next.
func RefNamesFromFile(path string) ([]clrmodel.AssemblyName, error) {
	f, rva, err := openManaged(path)
	if err != nil {
		return nil, fmt.Errorf("clrmeta: %s: %w", path, err)
	}
	defer f.Close()
	th, err := OpenTableHeapAt(f, rva)
	if err != nil {
		return nil, err
	}
	return clrmodel.RefNames(th)
}

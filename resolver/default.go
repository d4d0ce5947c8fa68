package resolver

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/MaximumOverflow/clrmeta"
	"github.com/MaximumOverflow/clrmeta/clrmodel"
)

// DefaultAssemblyResolver discovers candidates by recursively walking a set
// of search-path directories for .dll/.exe files, indexing them by short
// name (the filename without extension), and matching a requested
// AssemblyName against each indexed candidate's own identity (spec.md §4.9
// steps 3-6, grounded on the original resolver's directory-walk-then-match
// strategy).
type DefaultAssemblyResolver struct {
	paths map[string][]string // short name -> candidate file paths

	mu     sync.Mutex
	byPath map[string]clrmodel.AssemblyName // lazily filled per-candidate probe cache
}

// NewDefaultAssemblyResolver walks every root in searchPaths once, indexing
// every .dll/.exe file it finds by short name. Unreadable roots are skipped
// silently, matching the original's best-effort directory walk.
func NewDefaultAssemblyResolver(searchPaths []string) *DefaultAssemblyResolver {
	r := &DefaultAssemblyResolver{
		paths:  map[string][]string{},
		byPath: map[string]clrmodel.AssemblyName{},
	}
	for _, root := range searchPaths {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".dll" && ext != ".exe" {
				return nil
			}
			short := shortName(path)
			r.paths[short] = append(r.paths[short], path)
			return nil
		})
	}
	return r
}

func shortName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolveAssemblyName implements AssemblyResolver: it looks up candidates by
// name's short name, lazily probes each candidate's own AssemblyName on
// first use, filters by version compatibility (ignoring the requested
// version entirely when name carries the Retargetable flag), and returns
// the path to the highest-versioned compatible match.
func (r *DefaultAssemblyResolver) ResolveAssemblyName(name clrmodel.AssemblyName) (Result, error) {
	candidates, ok := r.paths[name.Name]
	if !ok {
		return Result{}, nil
	}

	want := name.Version
	if name.Flags.Retargetable() {
		want = clrmodel.ZeroVersion
	}

	probed := r.probeAll(candidates)
	compatible := lo.Filter(probed, func(p candidate, _ int) bool {
		return p.name.Name == name.Name && p.name.Culture == name.Culture &&
			p.name.Version.IsCompatibleWith(want)
	})
	if len(compatible) == 0 {
		return Result{}, nil
	}

	winner := lo.MaxBy(compatible, func(a, b candidate) bool {
		return b.name.Version.Less(a.name.Version)
	})
	return Result{Path: winner.path}, nil
}

type candidate struct {
	path string
	name clrmodel.AssemblyName
}

// probeAll lazily extracts and caches the AssemblyName of every candidate
// path. Unreadable or non-managed files are skipped.
func (r *DefaultAssemblyResolver) probeAll(paths []string) []candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]candidate, 0, len(paths))
	for _, path := range paths {
		name, ok := r.byPath[path]
		if !ok {
			n, err := clrmeta.ReadAssemblyNameFromFile(path)
			if err != nil {
				continue
			}
			name = n
			r.byPath[path] = name
		}
		out = append(out, candidate{path: path, name: name})
	}
	return out
}

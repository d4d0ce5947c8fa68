package resolver

import (
	"fmt"

	"github.com/MaximumOverflow/clrmeta"
	"github.com/MaximumOverflow/clrmeta/clrlog"
	"github.com/MaximumOverflow/clrmeta/clrmodel"
)

// Context owns every Assembly loaded during one resolution session. It is
// affine: owned by exactly one goroutine, no internal locking (spec.md §5
// "A Context is an affine object ... no internal locking is required or
// permitted on its hot paths"). Multiple Contexts may run concurrently,
// each over its own independent set of loaded assemblies.
type Context struct {
	resolver AssemblyResolver
	loaded   map[string]*clrmodel.Assembly
	logger   *clrlog.Helper
}

// NewContext builds a Context from opts. When opts.Resolver is nil, a
// DefaultAssemblyResolver is built over opts.SearchPaths (or the
// CLRMETA_SEARCH_PATH environment variable when that's empty too).
func NewContext(opts Options) *Context {
	res := opts.Resolver
	if res == nil {
		res = NewDefaultAssemblyResolver(opts.searchPaths())
	}
	return &Context{
		resolver: res,
		loaded:   map[string]*clrmodel.Assembly{},
		logger:   clrlog.NewHelper(opts.Logger),
	}
}

// LoadedAssemblies returns every Assembly this Context has loaded so far,
// keyed by AssemblyName.Key().
func (ctx *Context) LoadedAssemblies() map[string]*clrmodel.Assembly {
	return ctx.loaded
}

// LoadAssembly loads the assembly at path, recursively resolving and
// loading its AssemblyRef entries, and returns the fully populated result.
// Loading the same identity twice (directly or via a reference cycle)
// returns the same *Assembly instance (spec.md §4.9 "Loading", testable
// property 7).
func (ctx *Context) LoadAssembly(path string) (*clrmodel.Assembly, error) {
	name, err := clrmeta.ReadAssemblyNameFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: %s: %w", path, err)
	}
	if existing, ok := ctx.loaded[name.Key()]; ok {
		return existing, nil
	}

	assembly, err := clrmeta.LoadAssemblyFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: %s: %w", path, err)
	}

	// Register before recursing into references: this is what lets a
	// cycle (A references B, B references A) terminate, per spec.md §4.9.
	key := assembly.Name.Key()
	ctx.loaded[key] = assembly

	refs, err := ctx.resolveRefs(path)
	if err != nil {
		delete(ctx.loaded, key) // preserve §3 invariant 1: no partial assembly stays visible
		return nil, err
	}
	assembly.Refs = refs

	return assembly, nil
}

func (ctx *Context) resolveRefs(path string) ([]clrmodel.AssemblyRef, error) {
	names, err := clrmeta.RefNamesFromFile(path)
	if err != nil {
		return nil, err
	}

	refs := make([]clrmodel.AssemblyRef, len(names))
	for i, name := range names {
		ref, err := ctx.resolveOne(name)
		if err != nil {
			ctx.logger.Warnf("resolver: unresolved reference %s: %v", name, err)
			n := name
			ref = clrmodel.AssemblyRef{Unresolved: &n}
		}
		refs[i] = ref
	}
	return refs, nil
}

func (ctx *Context) resolveOne(name clrmodel.AssemblyName) (clrmodel.AssemblyRef, error) {
	if loaded, ok := ctx.loaded[name.Key()]; ok {
		return clrmodel.AssemblyRef{Loaded: loaded}, nil
	}

	result, err := ctx.resolver.ResolveAssemblyName(name)
	if err != nil {
		return clrmodel.AssemblyRef{}, err
	}

	switch {
	case result.Assembly != nil:
		return clrmodel.AssemblyRef{Loaded: result.Assembly}, nil
	case result.Path != "":
		loaded, err := ctx.LoadAssembly(result.Path)
		if err != nil {
			return clrmodel.AssemblyRef{}, err
		}
		return clrmodel.AssemblyRef{Loaded: loaded}, nil
	default:
		n := name
		return clrmodel.AssemblyRef{Unresolved: &n}, nil
	}
}

// Package resolver implements assembly-reference resolution and the
// load-time Context that owns every loaded Assembly for one resolution
// session (ECMA-335 metadata decoder design notes, §4.9): discovering
// candidate assemblies on search paths, matching a referenced name by simple
// name, culture, and version compatibility (public keys are not compared),
// and loading referenced
// assemblies transitively while breaking reference cycles.
package resolver

import "github.com/MaximumOverflow/clrmeta/clrmodel"

// Result is the outcome of resolving an AssemblyName to a candidate: one
// of "no match", "a path to an unloaded candidate", or "an already-loaded
// Assembly" (mirrors the three-way result the original resolver returns so
// a Context can recurse into LoadAssembly only when actually needed).
type Result struct {
	Assembly *clrmodel.Assembly
	Path     string
}

// Found reports whether the result carries a usable candidate (a path or
// an already-loaded Assembly).
func (r Result) Found() bool { return r.Assembly != nil || r.Path != "" }

// AssemblyResolver is the pluggable name→candidate policy a Context
// delegates to (spec.md §6 "resolver_override"). Implementations may use
// search paths, a package cache, or any other discovery strategy.
type AssemblyResolver interface {
	// ResolveAssemblyName looks up a candidate for name. The Context's own
	// loaded-assemblies table has already been checked by the caller, so
	// implementations only need to consult their own index.
	ResolveAssemblyName(name clrmodel.AssemblyName) (Result, error)
}

package clrmodel

// AssemblyRef is one entry of an Assembly's reference list: either a
// resolved pointer to the already-loaded target, or the unresolved name a
// resolver could not match to any candidate (spec.md §3 invariant 1).
type AssemblyRef struct {
	Loaded     *Assembly
	Unresolved *AssemblyName
}

// IsLoaded reports whether this reference was resolved to a live Assembly.
func (r AssemblyRef) IsLoaded() bool { return r.Loaded != nil }

func (r AssemblyRef) String() string {
	if r.Loaded != nil {
		return r.Loaded.Name.Name
	}
	return r.Unresolved.String() + " [unresolved]"
}

// Assembly is a fully populated managed assembly: its own identity, its
// resolved/unresolved references, and the types it defines. Built in two
// stages by PopulateShell (name, types, fields, methods) followed by the
// caller assigning Refs once reference resolution completes — this split
// is what lets a Context register the in-progress Assembly before
// recursing into its references, breaking reference cycles deterministically
// (spec.md §4.9 "Loading").
type Assembly struct {
	Name  *AssemblyName
	Refs  []AssemblyRef
	Types []*Type
}

package resolver

import (
	"errors"
	"testing"

	"github.com/MaximumOverflow/clrmeta/clrmodel"
)

type fakeResolver struct {
	result Result
	err    error
}

func (f fakeResolver) ResolveAssemblyName(clrmodel.AssemblyName) (Result, error) {
	return f.result, f.err
}

func newTestContext(res AssemblyResolver) *Context {
	return &Context{resolver: res, loaded: map[string]*clrmodel.Assembly{}}
}

// TestResolveOneShortCircuitsOnLoaded exercises the cycle-breaking half of
// S6 directly: once an identity is registered in loaded, resolveOne must
// return the registered pointer without consulting the pluggable resolver.
func TestResolveOneShortCircuitsOnLoaded(t *testing.T) {
	name := clrmodel.AssemblyName{Name: "A"}
	existing := &clrmodel.Assembly{Name: &name}

	ctx := newTestContext(fakeResolver{err: errors.New("should not be called")})
	ctx.loaded[name.Key()] = existing

	ref, err := ctx.resolveOne(name)
	if err != nil {
		t.Fatalf("resolveOne: %v", err)
	}
	if ref.Loaded != existing {
		t.Fatalf("resolveOne returned %+v, want the already-loaded pointer", ref)
	}
}

func TestResolveOneReturnsUnresolvedWhenNotFound(t *testing.T) {
	ctx := newTestContext(fakeResolver{result: Result{}})
	ref, err := ctx.resolveOne(clrmodel.AssemblyName{Name: "Missing"})
	if err != nil {
		t.Fatalf("resolveOne: %v", err)
	}
	if ref.IsLoaded() {
		t.Fatalf("expected an unresolved ref, got %+v", ref)
	}
	if ref.Unresolved == nil || ref.Unresolved.Name != "Missing" {
		t.Fatalf("unresolved ref = %+v, want name Missing", ref.Unresolved)
	}
}

func TestResolveOneWrapsAlreadyLoadedResolverResult(t *testing.T) {
	name := clrmodel.AssemblyName{Name: "B"}
	already := &clrmodel.Assembly{Name: &name}
	ctx := newTestContext(fakeResolver{result: Result{Assembly: already}})

	ref, err := ctx.resolveOne(clrmodel.AssemblyName{Name: "B"})
	if err != nil {
		t.Fatalf("resolveOne: %v", err)
	}
	if ref.Loaded != already {
		t.Fatalf("resolveOne returned %+v, want the resolver's Assembly", ref)
	}
}

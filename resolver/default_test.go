package resolver

import (
	"testing"

	"github.com/MaximumOverflow/clrmeta/clrmodel"
)

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"/a/b/netstandard.dll": "netstandard",
		"C:\\libs\\Foo.exe":    "C:\\libs\\Foo",
	}
	for path, want := range cases {
		if got := shortName(path); got != want {
			t.Fatalf("shortName(%q) = %q, want %q", path, got, want)
		}
	}
}

// TestDefaultResolverRetargetable exercises S5: a retargetable reference to
// netstandard v2.0.0.0 resolves to a v2.1.0.0 candidate because the
// Retargetable flag zeroes the requested version before matching.
func TestDefaultResolverRetargetable(t *testing.T) {
	r := &DefaultAssemblyResolver{
		paths:  map[string][]string{"netstandard": {"/libs/netstandard.dll"}},
		byPath: map[string]clrmodel.AssemblyName{},
	}
	// Seed the probe cache directly instead of reading a real file.
	r.byPath["/libs/netstandard.dll"] = clrmodel.AssemblyName{
		Name:    "netstandard",
		Version: clrmodel.AssemblyVersion{Major: 2, Minor: 1},
	}

	want := clrmodel.AssemblyName{
		Name:    "netstandard",
		Version: clrmodel.AssemblyVersion{Major: 2, Minor: 0},
		Flags:   clrmodel.AssemblyFlagRetargetable,
	}

	result, err := r.ResolveAssemblyName(want)
	if err != nil {
		t.Fatalf("ResolveAssemblyName: %v", err)
	}
	if result.Path != "/libs/netstandard.dll" {
		t.Fatalf("resolved path = %q, want /libs/netstandard.dll", result.Path)
	}
}

// TestDefaultResolverVersionSelectsHighest picks the highest compatible
// version when several candidates share a short name.
func TestDefaultResolverVersionSelectsHighest(t *testing.T) {
	r := &DefaultAssemblyResolver{
		paths: map[string][]string{"lib": {"/a/lib.dll", "/b/lib.dll"}},
		byPath: map[string]clrmodel.AssemblyName{
			"/a/lib.dll": {Name: "lib", Version: clrmodel.AssemblyVersion{Major: 1, Minor: 0}},
			"/b/lib.dll": {Name: "lib", Version: clrmodel.AssemblyVersion{Major: 1, Minor: 5}},
		},
	}
	result, err := r.ResolveAssemblyName(clrmodel.AssemblyName{
		Name: "lib", Version: clrmodel.AssemblyVersion{Major: 1, Minor: 0},
	})
	if err != nil {
		t.Fatalf("ResolveAssemblyName: %v", err)
	}
	if result.Path != "/b/lib.dll" {
		t.Fatalf("resolved path = %q, want /b/lib.dll (highest compatible version)", result.Path)
	}
}

func TestDefaultResolverNoCandidates(t *testing.T) {
	r := &DefaultAssemblyResolver{paths: map[string][]string{}, byPath: map[string]clrmodel.AssemblyName{}}
	result, err := r.ResolveAssemblyName(clrmodel.AssemblyName{Name: "missing"})
	if err != nil {
		t.Fatalf("ResolveAssemblyName: %v", err)
	}
	if result.Found() {
		t.Fatalf("expected no match, got %+v", result)
	}
}

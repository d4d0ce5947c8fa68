package resolver

import (
	"path/filepath"

	"github.com/xyproto/env/v2"

	"github.com/MaximumOverflow/clrmeta/clrlog"
)

// SearchPathEnvVar is consulted by NewContext when the caller supplies no
// explicit search paths (spec.md §6 "search_paths").
const SearchPathEnvVar = "CLRMETA_SEARCH_PATH"

// Options configures a Context (spec.md §6 "Public configuration").
type Options struct {
	// SearchPaths lists filesystem roots walked recursively at
	// construction time by the default resolver. Ignored if Resolver is
	// set. Falls back to CLRMETA_SEARCH_PATH (OS-list-separated) when nil.
	SearchPaths []string

	// Resolver replaces the default search-path policy with a
	// caller-provided implementation (spec.md §6 "resolver_override").
	Resolver AssemblyResolver

	// Logger receives diagnostic messages; nil means silent operation.
	Logger clrlog.Logger
}

func (o Options) searchPaths() []string {
	if len(o.SearchPaths) > 0 {
		return o.SearchPaths
	}
	raw := env.Str(SearchPathEnvVar)
	if raw == "" {
		return nil
	}
	return filepath.SplitList(raw)
}

// Package clrmodel is the structured, cross-referenced object model built
// on top of the raw metadata tables: assemblies, their references, and the
// types/fields/methods a TypeDef table describes (ECMA-335 metadata §4.8 of
// this module's design notes). Unlike the raw metadata package, this layer
// resolves heap offsets to strings and signature blobs to decoded trees.
package clrmodel

import "fmt"

// AssemblyVersion is the four-part version carried by an Assembly or
// AssemblyRef row (ECMA-335 §II.22.2, §II.22.5).
type AssemblyVersion struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// ZeroVersion is the all-zero version, which the compatibility filter
// treats as "matches anything" on either side of a comparison.
var ZeroVersion = AssemblyVersion{}

// IsCompatibleWith reports whether v may stand in for want when resolving
// an assembly reference: either side being all-zero always matches, and
// otherwise the major version must match exactly and the minor version
// must be at least as high as requested.
func (v AssemblyVersion) IsCompatibleWith(want AssemblyVersion) bool {
	if v == ZeroVersion || want == ZeroVersion {
		return true
	}
	return v.Major == want.Major && v.Minor >= want.Minor
}

// Less orders two versions lexicographically by (major, minor, build,
// revision); used to pick the highest-versioned candidate during resolution.
func (v AssemblyVersion) Less(other AssemblyVersion) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	if v.Build != other.Build {
		return v.Build < other.Build
	}
	return v.Revision < other.Revision
}

func (v AssemblyVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// AssemblyFlags are the Assembly/AssemblyRef table's Flags column bits
// (ECMA-335 §II.23.1.2).
type AssemblyFlags uint32

const (
	AssemblyFlagPublicKey             AssemblyFlags = 0x0001
	AssemblyFlagRetargetable          AssemblyFlags = 0x0100
	AssemblyFlagDisableJITOptimizer   AssemblyFlags = 0x4000
	AssemblyFlagEnableJITTracking     AssemblyFlags = 0x8000
)

// Retargetable reports whether the AssemblyRef carries the Retargetable bit,
// which causes the resolver to ignore its requested version entirely.
func (f AssemblyFlags) Retargetable() bool { return f&AssemblyFlagRetargetable != 0 }

// AssemblyName identifies an assembly by its four-part version, flags,
// public key (or token), simple name, and culture (ECMA-335 §II.23.1.2).
// It is a value type: two AssemblyNames with equal fields denote the same
// assembly identity, independent of where either was read from.
type AssemblyName struct {
	Version   AssemblyVersion
	Flags     AssemblyFlags
	PublicKey []byte
	Name      string
	Culture   string
}

// Key returns a canonical string uniquely identifying this name's identity,
// used as the map key in a Context's loaded-assemblies table. Two equal
// AssemblyNames always produce the same key.
func (n AssemblyName) Key() string {
	return fmt.Sprintf("%s/%s/%s/%x", n.Name, n.Culture, n.Version, n.PublicKey)
}

func (n AssemblyName) String() string {
	culture := n.Culture
	if culture == "" {
		culture = "neutral"
	}
	token := "null"
	if len(n.PublicKey) > 0 {
		token = fmt.Sprintf("%X", n.PublicKey)
	}
	return fmt.Sprintf("%s, Version=%s, Culture=%s, PublicKeyToken=%s", n.Name, n.Version, culture, token)
}

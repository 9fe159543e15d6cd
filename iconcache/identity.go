// Package iconcache deduplicates platform icon bitmaps sent to the frontend.
//
// Icons are identified by a derived key. The first request for a key carries
// the encoded bitmap; every later request for the same key carries only the
// key, and the frontend reuses the bytes it already holds.
package iconcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityKind names the rule that produced an icon key.
type IdentityKind int

const (
	// IdentityName is an OS-assigned symbolic icon name.
	IdentityName IdentityKind = iota + 1
	// IdentityDigest is a content digest of the raw bitmap bytes.
	IdentityDigest
	// IdentityPath is the file path the icon was requested for.
	IdentityPath
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityName:
		return "name"
	case IdentityDigest:
		return "digest"
	case IdentityPath:
		return "path"
	default:
		return "unknown"
	}
}

// Source describes an OS-rendered icon as far as identity is concerned.
type Source struct {
	Name string // OS-assigned symbolic name, empty if none
	Raw  []byte // raw bitmap representation, nil if unobtainable
}

// Identity is a derived icon key together with the rule that produced it.
type Identity struct {
	Kind IdentityKind
	Key  string
}

// Derive picks the icon key for src, requested for path.
// Precedence: symbolic name, then content digest, then the path itself.
func Derive(src Source, path string) Identity {
	switch {
	case src.Name != "":
		return Identity{Kind: IdentityName, Key: src.Name}
	case len(src.Raw) > 0:
		return Identity{Kind: IdentityDigest, Key: Digest(src.Raw)}
	default:
		return Identity{Kind: IdentityPath, Key: path}
	}
}

// Digest returns the lowercase hex SHA-256 of raw.
func Digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

package ism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// interfaceIDPrefix namespaces stable interface ids.
const interfaceIDPrefix = "iface_"

// StableID derives the stable id of an interface from its name. It is a
// pure function of the name: identical names produce identical ids
// across any run.
func StableID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return interfaceIDPrefix + hex.EncodeToString(sum[:])[:8]
}

// ContentHash computes the whole-document hash used for idempotent
// downstream comparison. The hash field itself is excluded, so hashing
// is stable under re-normalization.
func ContentHash(doc Document) (string, error) {
	doc.ContentHash = ""
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

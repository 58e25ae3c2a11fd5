// Package gaia defines the shared language of the Gaia graph contract.
//
// This package contains:
//   - Wire entities (Graph, Node, Field, Edge) in the exact JSON shape
//     the downstream graph store consumes
//   - The closed five-value type system every compiled field maps into
//   - The graph validator (one rule set for compiler and patch engine)
//   - The patch engine (structured diffs over graphs)
//   - The interface compiler (canonical interface -> source-node graph)
//
// The Golden Rule: pkg/gaia imports ONLY pkg/ism, pkg/dag and stdlib.
package gaia

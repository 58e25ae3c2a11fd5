// Package ism models the Interface Semantic Model: the canonical
// description of one data-facing interface extracted from a document.
//
// The package owns the front half of the compilation chain: tolerant
// decoding of raw extraction candidates, deduplication and merging of
// overlapping candidates into one canonical interface set, and
// normalization into a validated, stably-identified form ready for the
// Gaia compiler. All operations are synchronous, deterministic and
// side-effect free; results carry append-only Diagnostics instead of
// raising across the API boundary.
package ism

// Package testutil provides testing utilities for meshgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random number generator and helpers
// for generating synthetic vertex positions.
//
// # Deterministic Randomness
//
//	rng := testutil.NewRNG(seed)
//	buf := make([]float32, 128)
//	rng.FillUniform(buf) // uniform [0, 1)
//
// # Synthetic Positions
//
//	base := testutil.GridPositions(8, 8, 8, 1.0)          // regular lattice
//	near := testutil.JitterPositions(rng, base, 1e-6)     // near duplicates
package testutil

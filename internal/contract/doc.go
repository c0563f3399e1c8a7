// Package contract runs projection contracts over an event log.
//
// A Contract folds timed events into a private state and optionally
// finalizes that state into an artifact. A Derived contract consumes the
// finished state and artifact of another contract through a single pure
// stage function, which is how secondary artifacts (a mesh built from a
// physics layout, audio built from particles) are produced.
//
// Execution is synchronous and single-threaded per run. Contracts hold no
// package-level state, so independent runs may execute in parallel.
//
// Determinism: the same events and the same contract always yield the
// same artifact. Nothing here reads wall-clock time or randomness.
package contract

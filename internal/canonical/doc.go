// Package canonical provides RFC 8785-style canonical JSON and
// domain-separated SHA-256 digests for events, event logs and artifacts.
//
// Canonical bytes are the identity of a value: two runs that produce the
// same artifact produce the same digest, which is what the determinism
// checks compare.
//
// Key properties of the encoding:
//   - Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//   - Strings NFC normalized, no HTML escaping
//   - Numbers in shortest round-trip form, the same text a JavaScript
//     number-to-string conversion produces
//   - NaN and infinities are rejected
package canonical

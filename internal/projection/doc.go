// Package projection is the registry of named projection contracts.
//
// Every entry turns an event log into one encoded artifact. Plain
// entries run a single contract over the log; derived entries run a base
// contract and feed its final state and artifact into a derived stage:
//
//	physics-svg    physics snapshot -> synthetic node.add log -> SVG
//	svg-gltf       SVG markup -> glTF document
//	svg-obj        SVG markup -> OBJ/MTL text
//	physics-audio  physics snapshot -> one pluck per particle -> samples
//
// Artifacts carry their encoded bytes and a digest scoped by entry name,
// so two runs over the same log can be compared byte for byte.
package projection

// Package mediatypes provides shared stream classification for the relay.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains the StreamKind
// enum and pure utility functions with no dependencies beyond the standard
// library.
//
// # Stream Kinds
//
// A source URL is classified by how a browser-capable player can consume it:
//
//	mediatypes.StreamManifest  // HLS playlist, playable directly
//	mediatypes.StreamTransport // raw MPEG-TS, needs the local relay
//	mediatypes.StreamUnknown   // anything else, routed through the relay
//
// Use KindOf to classify, or IsManifest for the common bypass decision:
//
//	if mediatypes.IsManifest(url) {
//	    // hand the URL to the player unchanged
//	}
package mediatypes

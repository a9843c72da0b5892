// Package handlers implements the relay's control API.
//
// These endpoints are what the player UI calls: proxying playlist text
// past provider CORS rules, starting and stopping the transcoding
// session, loading channel lists, and reading and writing persisted
// settings. Stream control responses use an ok/error JSON envelope so the
// UI can branch on a field instead of catching transport errors.
//
// The actual media bytes never pass through this package; they flow over
// the dynamic /mp4/ routes owned by the relay server.
package handlers

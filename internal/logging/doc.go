// Package logging provides leveled logging for the relay.
//
// Levels are debug, info, warn, and error. The active level comes from the
// LOG_LEVEL environment variable (or DEBUG=1 as a shortcut for debug) and
// can be changed at runtime with SetLevel. Output goes through the standard
// library logger so timestamps and destinations follow log.SetOutput and
// log.SetFlags.
package logging

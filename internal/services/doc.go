// Package services defines the error taxonomy shared by the fetch pipeline.
//
// Failures are tagged with sentinel markers (io, transport, decode, protocol)
// so callers can classify them for diagnostics without string matching.
// Wrap is the single constructor; it prefixes the
// stage and operation so a reported error always names the unit that failed.
package services

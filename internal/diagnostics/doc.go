// Package diagnostics reports host resources the judging service depends on:
// memory for decoding media and free disk space for spooled uploads.
package diagnostics

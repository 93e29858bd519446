// Package diagnostic provides structured, collect-all error reporting
// for the TOSCA resolution and validation pipeline.
//
// Key capabilities:
//   - Severity-tagged diagnostics (info, warning, error) with stable codes
//   - Accumulation across a whole pass instead of fail-fast
//   - Conversion of accumulated errors into a single Go error
package diagnostic

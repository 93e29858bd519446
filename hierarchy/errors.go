package hierarchy

import "errors"

// ErrInheritanceCycle is returned when a derived_from chain revisits a
// type name. A cycle makes every dependent resolution meaningless, so
// callers abort the pass on it.
var ErrInheritanceCycle = errors.New("hierarchy: inheritance cycle")

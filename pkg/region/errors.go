package region

import "fmt"

// MarkerKind classifies a MarkerError.
type MarkerKind int

const (
	MarkerMissing MarkerKind = iota
	MarkerDuplicate
	MarkerMisordered
	MarkerEmpty
	MarkerInFragment
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerMissing:
		return "missing"
	case MarkerDuplicate:
		return "duplicated"
	case MarkerMisordered:
		return "misordered"
	case MarkerEmpty:
		return "empty"
	case MarkerInFragment:
		return "in fragment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarkerError reports a host document whose marker pair cannot be located
// unambiguously. Count is the number of occurrences of Marker found.
type MarkerError struct {
	Kind   MarkerKind
	Marker string
	Count  int
}

func (e *MarkerError) Error() string {
	switch e.Kind {
	case MarkerMissing:
		return fmt.Sprintf("marker %q not found in document", e.Marker)
	case MarkerDuplicate:
		return fmt.Sprintf("marker %q found %d times, want exactly once", e.Marker, e.Count)
	case MarkerMisordered:
		return fmt.Sprintf("marker %q must come after the start marker", e.Marker)
	case MarkerEmpty:
		return "marker must not be empty"
	case MarkerInFragment:
		return fmt.Sprintf("fragment contains marker %q", e.Marker)
	default:
		return fmt.Sprintf("marker %q: %s", e.Marker, e.Kind)
	}
}

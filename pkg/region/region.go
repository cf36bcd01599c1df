package region

import "strings"

const (
	DefaultStartMarker = "<!-- SPONSORS_START -->"
	DefaultEndMarker   = "<!-- SPONSORS_END -->"
)

// Markers is the pair of literal sentinels bounding the managed region.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers returns the SPONSORS_START / SPONSORS_END comment pair.
func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// Document is a host document split into three contiguous spans of one
// buffer: prefix [0, regionStart), region [regionStart, regionEnd) and
// suffix [regionEnd, len). regionStart is the end of the start marker and
// regionEnd is the start of the end marker.
type Document struct {
	buf         string
	startMarker string
	endMarker   string
	regionStart int
	regionEnd   int
}

// Parse locates the marker pair in doc. Each marker must occur exactly once
// and the end marker must begin at or after the end of the start marker.
func Parse(doc, startMarker, endMarker string) (Document, error) {
	if startMarker == "" {
		return Document{}, &MarkerError{Kind: MarkerEmpty, Marker: startMarker}
	}
	if endMarker == "" {
		return Document{}, &MarkerError{Kind: MarkerEmpty, Marker: endMarker}
	}

	startAt, err := locateOnce(doc, startMarker)
	if err != nil {
		return Document{}, err
	}
	endAt, err := locateOnce(doc, endMarker)
	if err != nil {
		return Document{}, err
	}

	regionStart := startAt + len(startMarker)
	if endAt < regionStart {
		return Document{}, &MarkerError{Kind: MarkerMisordered, Marker: endMarker, Count: 1}
	}
	return Document{
		buf:         doc,
		startMarker: startMarker,
		endMarker:   endMarker,
		regionStart: regionStart,
		regionEnd:   endAt,
	}, nil
}

// locateOnce returns the index of the single occurrence of marker in doc.
// Overlapping occurrences count separately so "--><!--" style markers cannot
// hide a second match.
func locateOnce(doc, marker string) (int, error) {
	first := strings.Index(doc, marker)
	if first < 0 {
		return -1, &MarkerError{Kind: MarkerMissing, Marker: marker}
	}
	count := 1
	for at := first + 1; at <= len(doc)-len(marker); {
		next := strings.Index(doc[at:], marker)
		if next < 0 {
			break
		}
		count++
		at += next + 1
	}
	if count != 1 {
		return -1, &MarkerError{Kind: MarkerDuplicate, Marker: marker, Count: count}
	}
	return first, nil
}

// Prefix is everything up to and including the start marker.
func (d Document) Prefix() string { return d.buf[:d.regionStart] }

// Region is the managed content between the markers.
func (d Document) Region() string { return d.buf[d.regionStart:d.regionEnd] }

// Suffix is the end marker and everything after it.
func (d Document) Suffix() string { return d.buf[d.regionEnd:] }

// String reassembles the original document.
func (d Document) String() string { return d.buf }

// Replace returns a new document whose region is a newline followed by
// fragment. The receiver is unchanged. A fragment containing either marker
// fails with a *MarkerError, since the result would no longer parse.
func (d Document) Replace(fragment string) (string, error) {
	for _, marker := range []string{d.startMarker, d.endMarker} {
		if strings.Contains(fragment, marker) {
			return d.buf, &MarkerError{Kind: MarkerInFragment, Marker: marker, Count: strings.Count(fragment, marker)}
		}
	}

	var b strings.Builder
	b.Grow(d.regionStart + 1 + len(fragment) + len(d.buf) - d.regionEnd)
	b.WriteString(d.Prefix())
	b.WriteByte('\n')
	b.WriteString(fragment)
	b.WriteString(d.Suffix())
	return b.String(), nil
}

// Inject replaces the managed region of document with fragment. On error the
// returned string is the unmodified document.
func Inject(document, startMarker, endMarker, fragment string) (string, error) {
	d, err := Parse(document, startMarker, endMarker)
	if err != nil {
		return document, err
	}
	return d.Replace(fragment)
}

// Package plist extracts SQL statements from the POI feed document.
package plist

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrNoStatements is returned when the document has no statement array.
var ErrNoStatements = errors.New("plist: no statement array")

type document struct {
	XMLName xml.Name `xml:"plist"`
	Arrays  []array  `xml:"array"`
}

type array struct {
	Strings []string `xml:"string"`
}

// Statements returns the string children of the first array under the
// plist root, in document order. Entries are trimmed; blanks are kept so
// callers can count them.
func Statements(data []byte) ([]string, error) {
	var doc document
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Apple plists declare a DTD the decoder must not try to resolve.
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode plist: %w", err)
	}
	if len(doc.Arrays) == 0 {
		return nil, ErrNoStatements
	}
	out := make([]string, len(doc.Arrays[0].Strings))
	for i, s := range doc.Arrays[0].Strings {
		out[i] = strings.TrimSpace(s)
	}
	return out, nil
}

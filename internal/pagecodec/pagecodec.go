// Package pagecodec converts between a single PDF byte stream and the ordered
// sequence of one-page records the page engine operates on. It is the only
// package that touches the PDF format itself.
package pagecodec

import (
	"errors"
)

// Codec errors.
var (
	ErrDecodeFailed = errors.New("pagecodec: decode failed")
	ErrEncodeFailed = errors.New("pagecodec: encode failed")
	ErrNoPages      = errors.New("pagecodec: document has no pages")
)

// Codec splits a document into per-page records and assembles records back
// into a single document. Implementations must guarantee that
// Assemble(Split(doc)) yields a document with the same page count and
// page-level content ordering as doc.
type Codec interface {
	// PageCount returns the number of pages in the document.
	PageCount(data []byte) (int, error)

	// Split decodes a document into one record per page, in document order.
	Split(data []byte) ([][]byte, error)

	// Assemble encodes an ordered sequence of one-page records into a
	// single document. Fails with ErrNoPages on an empty sequence.
	Assemble(pages [][]byte) ([]byte, error)
}

package pagecodec

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type pdfCodec struct {
	conf *model.Configuration
}

// New creates a PDF codec backed by pdfcpu with its default configuration.
// Validation is relaxed so documents produced by other writers still decode.
func New() Codec {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &pdfCodec{conf: conf}
}

func (c *pdfCodec) PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return count, nil
}

func (c *pdfCodec) Split(data []byte) ([][]byte, error) {
	count, err := c.PageCount(data)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, ErrNoPages
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &buf, []string{strconv.Itoa(i)}, c.conf); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrDecodeFailed, i, err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

func (c *pdfCodec) Assemble(pages [][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	if len(pages) == 1 {
		return slices.Clone(pages[0]), nil
	}

	readers := make([]io.ReadSeeker, len(pages))
	for i, page := range pages {
		readers[i] = bytes.NewReader(page)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, c.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	return buf.Bytes(), nil
}

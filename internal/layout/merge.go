package layout

import (
	"bytes"
	"fmt"
	"io"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// mergeDocuments appends the pages of overflow to base.
func mergeDocuments(base, overflow []byte) ([]byte, error) {
	if len(base) == 0 || len(overflow) == 0 {
		return nil, fmt.Errorf("cannot merge empty document")
	}
	config := model.NewDefaultConfiguration()
	var out bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(base), bytes.NewReader(overflow)}
	if err := pdfapi.MergeRaw(readers, &out, false, config); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// countPages reads the page count back from a finished document.
func countPages(doc []byte) (int, error) {
	config := model.NewDefaultConfiguration()
	return pdfapi.PageCount(bytes.NewReader(doc), config)
}

package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/graphscape/pkg/errors"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestToPDF(t *testing.T) {
	pdf, err := ToPDF(context.Background(), []byte(square))
	if !Available() {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ToPDF() error = %v, want UNSUPPORTED without %s", err, converter)
		}
		return
	}
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() = %q..., want a PDF header", pdf[:min(len(pdf), 8)])
	}
}

package render

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/orchestree/orchestree/pkg/errors"
)

const tinySVG = `<?xml version="1.0" encoding="UTF-8"?><svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><rect width="4" height="4"/></svg>`

func TestToPNG(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		_, err := ToPNG(context.Background(), []byte(tinySVG), 1)
		if !errors.Is(err, errors.ErrCodeConversion) {
			t.Errorf("ToPNG() without rsvg-convert error = %v, want %s", err, errors.ErrCodeConversion)
		}
		return
	}

	out, err := ToPNG(context.Background(), []byte(tinySVG), 2)
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Errorf("ToPNG() output is not a PNG")
	}
}

func TestToPDF_InvalidInput(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not available")
	}
	_, err := ToPDF(context.Background(), []byte("not svg"))
	if !errors.Is(err, errors.ErrCodeConversion) {
		t.Errorf("ToPDF() error = %v, want %s", err, errors.ErrCodeConversion)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG: "image/svg+xml",
		FormatPNG: "image/png",
		FormatPDF: "application/pdf",
		FormatDOT: "text/vnd.graphviz",
		"bmp":     "application/octet-stream",
	}
	for in, want := range tests {
		if got := ContentType(in); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", in, got, want)
		}
	}
}

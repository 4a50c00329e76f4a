package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/graphscape/pkg/errors"
)

// converter is the external SVG conversion tool, provided by librsvg.
const converter = "rsvg-convert"

// ToPDF converts SVG bytes to PDF with rsvg-convert. When the tool is not
// installed the error carries errors.ErrCodeUnsupported.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// Available reports whether SVG conversion can run on this machine.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

func convert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	if !Available() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s output needs %s (macOS: brew install librsvg, Linux: apt install librsvg2-bin)", format, converter)
	}

	cmd := exec.CommandContext(ctx, converter, "-f", format)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

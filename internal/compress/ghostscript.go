package compress

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"docarchive/internal/shared/procexec"
)

const (
	defaultGhostscriptBinary = "gs"
	defaultImageResolution   = 120
)

// Ghostscript compresses PDFs by running them through the pdfwrite device
// with the /screen profile.
type Ghostscript struct {
	Binary     string
	Resolution int
	TempDir    string
	Timeout    time.Duration
}

// NewGhostscript constructs a Ghostscript compressor. Zero values fall back to
// "gs" and 120 DPI.
func NewGhostscript(binary string, resolution int, tempDir string, timeout time.Duration) *Ghostscript {
	return &Ghostscript{Binary: binary, Resolution: resolution, TempDir: tempDir, Timeout: timeout}
}

// CompressPDF writes the compressed rendition to a temp file, reads it back and
// removes it.
func (g *Ghostscript) CompressPDF(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("compress pdf input: %w", err)
	}

	out, err := os.CreateTemp(g.TempDir, "gs-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("compress pdf temp file: %w", err)
	}
	outPath := out.Name()
	defer os.Remove(outPath)
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("compress pdf temp file: %w", err)
	}

	res, err := procexec.Run(ctx, procexec.Command{
		Name:    g.binary(),
		Args:    g.args(outPath, path),
		Timeout: g.Timeout,
	})
	if err != nil {
		return nil, &ToolError{Tool: "ghostscript", ExitCode: res.ExitCode, Stderr: strings.TrimSpace(string(res.Stderr)), Err: err}
	}
	if res.ExitCode != 0 {
		return nil, &ToolError{Tool: "ghostscript", ExitCode: res.ExitCode, Stderr: strings.TrimSpace(string(res.Stderr))}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read compressed pdf: %w", err)
	}
	if len(data) == 0 {
		return nil, &ToolError{Tool: "ghostscript", Stderr: "empty output"}
	}
	return data, nil
}

func (g *Ghostscript) binary() string {
	if g.Binary == "" {
		return defaultGhostscriptBinary
	}
	return g.Binary
}

func (g *Ghostscript) args(outPath, inPath string) []string {
	dpi := g.Resolution
	if dpi <= 0 {
		dpi = defaultImageResolution
	}
	args := []string{
		"-q",
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=/screen",
		"-dEmbedAllFonts=true",
		"-dSubsetFonts=true",
	}
	for _, channel := range []string{"Color", "Gray", "Mono"} {
		args = append(args,
			fmt.Sprintf("-d%sImageDownsampleType=/Bicubic", channel),
			fmt.Sprintf("-d%sImageResolution=%d", channel, dpi),
		)
	}
	return append(args, "-sOutputFile="+outPath, inPath)
}

var _ PDFCompressor = (*Ghostscript)(nil)

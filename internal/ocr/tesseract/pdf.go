package tesseract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docarchive/internal/shared/procexec"
)

// PDFRenderer drives the tesseract CLI with its pdf output config. Each call
// is a separate process and therefore a separate engine instance.
type PDFRenderer struct {
	Binary      string
	TessdataDir string
	Language    string
	Timeout     time.Duration
}

// RenderPDF writes outputBase.pdf containing the image with an invisible text layer.
func (r *PDFRenderer) RenderPDF(ctx context.Context, imagePath, outputBase string) error {
	res, err := procexec.Run(ctx, procexec.Command{
		Name:    r.binary(),
		Args:    r.args(imagePath, outputBase),
		Timeout: r.Timeout,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("tesseract exited with code %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return nil
}

func (r *PDFRenderer) binary() string {
	if r.Binary == "" {
		return "tesseract"
	}
	return r.Binary
}

func (r *PDFRenderer) args(imagePath, outputBase string) []string {
	lang := r.Language
	if strings.TrimSpace(lang) == "" {
		lang = defaultLanguage
	}
	args := []string{imagePath, outputBase, "-l", lang, "--psm", "3"}
	if r.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.TessdataDir)
	}
	return append(args, "pdf")
}

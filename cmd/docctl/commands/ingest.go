package commands

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"docarchive/internal/documents"
	"docarchive/internal/ingest"
)

var (
	ingestContentType string
	ingestName        string
	ingestTimeout     time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Run a local PDF or JPEG through the ingestion pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestContentType, "type", "", "declared content type (default: detected from extension, then content)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "file name to record (default: base name of <file>)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 5*time.Minute, "overall ingestion timeout")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), ingestTimeout)
	defer cancel()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}
	contentType := ingestContentType
	if contentType == "" {
		contentType = detectContentType(path, data)
	}

	doc, err := app.IngestService.Ingest(ctx, ingest.Upload{
		Data:        data,
		ContentType: contentType,
		FileName:    name,
	})
	if err != nil {
		return fmt.Errorf("ingest %s (%s): %w", path, ingest.Outcome(err), err)
	}
	return printJSON(cmd.OutOrStdout(), documents.ToResponse(doc, false))
}

func detectContentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docarchive/internal/documents"
)

var (
	showText bool
	showOut  string
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored document's metadata, optionally its text or binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showText, "text", false, "print only the extracted text")
	showCmd.Flags().StringVarP(&showOut, "out", "o", "", "write the stored binary to this path")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	doc, err := app.DocumentsService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get document %s: %w", args[0], err)
	}

	if showOut != "" {
		if err := os.WriteFile(showOut, doc.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", showOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(doc.Data), showOut)
	}
	if showText {
		_, err := fmt.Fprint(cmd.OutOrStdout(), doc.ExtractedText)
		return err
	}
	return printJSON(cmd.OutOrStdout(), documents.ToResponse(doc, true))
}

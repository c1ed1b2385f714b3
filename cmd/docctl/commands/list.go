package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"docarchive/internal/documents"
)

var (
	listQuery  string
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "case-insensitive match on file name or extracted text")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of documents")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of documents to skip")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	docs, err := app.DocumentsService.Search(cmd.Context(), listQuery, listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	out := make([]documents.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documents.ToResponse(doc, false))
	}
	return printJSON(cmd.OutOrStdout(), out)
}


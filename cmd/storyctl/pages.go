package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpang/story-viewer/internal/cli"
)

var pagesJSONFlag bool

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print the composed pages of a collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		c, pages, err := e.renderer.Load(ctx, collectionIDFlag, slugFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if pagesJSONFlag {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(pages)
		}
		fmt.Fprintf(out, "%s (%s)\n\n", c.Name, c.Identifier())
		return cli.WritePageTable(out, pages)
	},
}

func init() {
	pagesCmd.Flags().BoolVar(&pagesJSONFlag, "json", false, "Print page descriptors as JSON")
}

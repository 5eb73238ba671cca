package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/story-viewer/internal/render"
)

var outputFlag string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the AMP story document of a collection",
	Long: `Render writes the same document the server returns for /story. Failures
produce the error document and a non-zero exit status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		res, renderErr := e.renderer.Render(ctx, render.Request{
			CollectionID: collectionIDFlag,
			Slug:         slugFlag,
			BaseURL:      e.cfg.BaseURL,
		})

		if outputFlag == "" || outputFlag == "-" {
			fmt.Fprint(cmd.OutOrStdout(), res.HTML)
		} else if err := os.WriteFile(outputFlag, []byte(res.HTML), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputFlag, err)
		}

		if renderErr != nil {
			return fmt.Errorf("%s: %w", res.Message, renderErr)
		}
		log.Info().Str("outcome", string(res.Outcome)).Int("pages", len(res.Pages)).Str("output", outputFlag).Msg("Story rendered")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default stdout)")
}

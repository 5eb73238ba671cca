// Command storyctl renders story collections from the command line: it
// prints composed pages, writes AMP documents, and publishes them to S3.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/config"
	"github.com/fpang/story-viewer/internal/httpx"
	"github.com/fpang/story-viewer/internal/lambdaboot"
	"github.com/fpang/story-viewer/internal/logging"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/render"
)

// Persistent flags
var (
	collectionIDFlag string
	slugFlag         string
	baseURLFlag      string
	ssmTokenFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "storyctl",
	Short: "Render and publish AMP story collections",
	Long: `storyctl fetches a story collection from the stories API and turns it
into an AMP story document.

Examples:
  storyctl pages --collection-id abc123 --slug travel
  storyctl render --collection-id abc123 --slug travel -o story.html
  storyctl publish --collection-id abc123 --slug travel --bucket my-stories`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&collectionIDFlag, "collection-id", "", "Collection to render")
	pf.StringVar(&slugFlag, "slug", "", "Collection slug")
	pf.StringVar(&baseURLFlag, "base-url", "", "Public origin used in the document (defaults to STORY_BASE_URL)")
	pf.BoolVar(&ssmTokenFlag, "ssm-token", false, "Read the App-Token from SSM Parameter Store when APP_TOKEN is unset")
	rootCmd.MarkPersistentFlagRequired("collection-id")
	rootCmd.MarkPersistentFlagRequired("slug")

	rootCmd.AddCommand(pagesCmd, renderCmd, publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs.
type env struct {
	cfg      *config.Config
	renderer *render.Renderer
}

func setup(ctx context.Context) (*env, error) {
	cfg := config.Load()
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ssmTokenFlag && cfg.AppToken == "" {
		clients, err := lambdaboot.InitAWS(ctx)
		if err != nil {
			return nil, err
		}
		if err := lambdaboot.LoadAppToken(ctx, clients.SSM, cfg); err != nil {
			return nil, err
		}
	}

	client := collections.NewClient(cfg.APIBaseURL, cfg.AppToken,
		collections.WithHTTPClient(httpx.NewClient(cfg.UpstreamTimeout, cfg.UpstreamRetries)),
	)
	log.Debug().Str("apiBase", cfg.APIBaseURL).Msg("Stories API client ready")
	return &env{
		cfg:      cfg,
		renderer: render.New(client, media.NewResolver(cfg.MediaBaseURL)),
	}, nil
}

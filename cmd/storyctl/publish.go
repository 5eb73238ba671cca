package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/story-viewer/internal/lambdaboot"
	"github.com/fpang/story-viewer/internal/render"
	"github.com/fpang/story-viewer/internal/s3util"
)

var (
	bucketFlag  string
	prefixFlag  string
	presignFlag time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render a collection and upload the document to S3",
	Long: `Publish renders the collection and stores it at
<prefix>/<slug>/<collectionId>.html. Error documents are never uploaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		bucket := bucketFlag
		if bucket == "" {
			bucket = e.cfg.PublishBucket
		}
		if bucket == "" {
			return errors.New("no bucket: pass --bucket or set STORY_PUBLISH_BUCKET")
		}

		res, err := e.renderer.Render(ctx, render.Request{
			CollectionID: collectionIDFlag,
			Slug:         slugFlag,
			BaseURL:      e.cfg.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", res.Message, err)
		}

		clients, err := lambdaboot.InitAWS(ctx)
		if err != nil {
			return err
		}
		s3c := lambdaboot.InitS3(clients.Config, bucket)
		key := s3util.DocumentKey(prefixFlag, slugFlag, collectionIDFlag)
		if err := s3util.UploadDocument(ctx, s3c.Client, s3c.Bucket, key, res.HTML); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s\n", bucket, key)

		if presignFlag > 0 {
			url, err := s3util.GeneratePresignedURL(ctx, s3c.Presigner, bucket, key, presignFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
		}
		log.Info().Str("bucket", bucket).Str("key", key).Int("pages", len(res.Pages)).Msg("Story published")
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&bucketFlag, "bucket", "", "Destination bucket (defaults to STORY_PUBLISH_BUCKET)")
	publishCmd.Flags().StringVar(&prefixFlag, "prefix", "stories", "Key prefix")
	publishCmd.Flags().DurationVar(&presignFlag, "presign", 0, "Also print a pre-signed GET URL valid for this long")
}

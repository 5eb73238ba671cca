// Package lambdaboot provides shared cold-start bootstrap logic.
//
// The story Lambda and storyctl both need some subset of: AWS config, S3,
// SSM parameter fetch, and startup logging. Each caller's init is a short
// composition of these helpers.
package lambdaboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/config"
	"github.com/fpang/story-viewer/internal/logging"
)

// AWSClients holds the core AWS SDK clients.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds S3 client, presigner, and bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// ParameterGetter is the subset of *ssm.Client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}, nil
}

// InitS3 creates an S3 client and presigner for bucket. An empty bucket
// leaves publishing disabled and returns the zero value.
func InitS3(cfg aws.Config, bucket string) S3Clients {
	if bucket == "" {
		log.Debug().Msg("No publish bucket configured")
		return S3Clients{}
	}
	client := s3.NewFromConfig(cfg)
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// Enabled reports whether a bucket was configured.
func (c S3Clients) Enabled() bool {
	return c.Client != nil && c.Bucket != ""
}

// LoadAppToken fills cfg.AppToken from SSM Parameter Store unless it is
// already set through the environment.
func LoadAppToken(ctx context.Context, getter ParameterGetter, cfg *config.Config) error {
	if cfg.AppToken != "" {
		return nil
	}
	param := cfg.SSMAppTokenParam
	start := time.Now()
	result, err := getter.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &param,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("read app token from SSM %s: %w", param, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return fmt.Errorf("SSM parameter %s is empty", param)
	}
	cfg.AppToken = *result.Parameter.Value
	log.Debug().Str("param", param).Dur("elapsed", time.Since(start)).Msg("App token loaded from SSM")
	return nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}

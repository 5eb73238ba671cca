package lambdaboot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/story-viewer/internal/config"
)

type fakeSSM struct {
	value string
	err   error
	in    *ssm.GetParameterInput
	calls int
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(f.value)}}, nil
}

func TestLoadAppToken(t *testing.T) {
	f := &fakeSSM{value: "secret"}
	cfg := &config.Config{SSMAppTokenParam: "/story-viewer/prod/app-token"}

	if err := LoadAppToken(context.Background(), f, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppToken != "secret" {
		t.Errorf("expected token secret, got %q", cfg.AppToken)
	}
	if *f.in.Name != "/story-viewer/prod/app-token" || !*f.in.WithDecryption {
		t.Errorf("unexpected request: %+v", f.in)
	}
}

func TestLoadAppToken_EnvWins(t *testing.T) {
	f := &fakeSSM{value: "from-ssm"}
	cfg := &config.Config{AppToken: "from-env", SSMAppTokenParam: "/p"}

	if err := LoadAppToken(context.Background(), f, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.calls != 0 {
		t.Errorf("expected no SSM call, got %d", f.calls)
	}
	if cfg.AppToken != "from-env" {
		t.Errorf("expected from-env, got %q", cfg.AppToken)
	}
}

func TestLoadAppToken_Errors(t *testing.T) {
	tests := []struct {
		name string
		ssm  *fakeSSM
	}{
		{"ssm failure", &fakeSSM{err: errors.New("AccessDenied")}},
		{"empty value", &fakeSSM{value: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SSMAppTokenParam: "/p"}
			if err := LoadAppToken(context.Background(), tt.ssm, cfg); err == nil {
				t.Error("expected error")
			}
			if cfg.AppToken != "" {
				t.Errorf("expected empty token, got %q", cfg.AppToken)
			}
		})
	}
}

func TestInitS3_Disabled(t *testing.T) {
	if c := InitS3(aws.Config{}, ""); c.Enabled() {
		t.Error("expected publishing disabled without a bucket")
	}
	if c := InitS3(aws.Config{Region: "us-east-1"}, "stories"); !c.Enabled() || c.Presigner == nil {
		t.Error("expected S3 clients for a configured bucket")
	}
}

func TestStartupLog(t *testing.T) {
	if StartupLog("story-lambda", time.Now().Add(-time.Second)) == nil {
		t.Error("expected a startup logger")
	}
}

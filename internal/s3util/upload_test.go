package s3util

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		prefix, slug, id string
		want             string
	}{
		{"stories", "travel", "col-1", "stories/travel/col-1.html"},
		{"", "travel", "col-1", "travel/col-1.html"},
		{"/published/", "travel", "col-1", "published/travel/col-1.html"},
	}
	for _, tt := range tests {
		if got := DocumentKey(tt.prefix, tt.slug, tt.id); got != tt.want {
			t.Errorf("DocumentKey(%q, %q, %q): expected %q, got %q", tt.prefix, tt.slug, tt.id, tt.want, got)
		}
	}
}

func TestUploadDocument(t *testing.T) {
	f := &fakePutter{}
	if err := UploadDocument(context.Background(), f, "bucket", "travel/col-1.html", "<html></html>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *f.in.Bucket != "bucket" || *f.in.Key != "travel/col-1.html" {
		t.Errorf("unexpected target: %s/%s", *f.in.Bucket, *f.in.Key)
	}
	if *f.in.ContentType != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type: %s", *f.in.ContentType)
	}
	if *f.in.Tagging != "Project=story-viewer" {
		t.Errorf("unexpected tagging: %s", *f.in.Tagging)
	}
	if f.body != "<html></html>" {
		t.Errorf("unexpected body: %q", f.body)
	}
}

func TestUploadDocument_Error(t *testing.T) {
	f := &fakePutter{err: errors.New("access denied")}
	err := UploadDocument(context.Background(), f, "bucket", "k", "x")
	if err == nil || !errors.Is(err, f.err) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

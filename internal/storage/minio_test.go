package storage

import (
	"testing"

	"github.com/andresuchdata/retailbi/internal/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"s3.example.com", true, "s3.example.com", true},
		{"localhost:9000", false, "localhost:9000", false},
		{"http://localhost:9000/", true, "localhost:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
		{"//bucket.host", true, "bucket.host", true},
	}

	for _, tt := range tests {
		host, secure := normalizeEndpoint(tt.in, tt.useSSL)
		if host != tt.wantHost || secure != tt.wantSecure {
			t.Errorf("normalizeEndpoint(%q, %v) = %q, %v; want %q, %v", tt.in, tt.useSSL, host, secure, tt.wantHost, tt.wantSecure)
		}
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	cases := map[string]config.StorageConfig{
		"missing endpoint":    {AccessKey: "a", SecretKey: "b", Bucket: "c"},
		"missing credentials": {Endpoint: "localhost:9000", Bucket: "c"},
		"missing bucket":      {Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for name, cfg := range cases {
		if _, err := NewMinioClient(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	client, err := NewMinioClient(config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Bucket:    "datasets",
	})
	if err != nil {
		t.Fatalf("NewMinioClient returned error: %v", err)
	}
	if client.bucket != "datasets" {
		t.Errorf("unexpected bucket %s", client.bucket)
	}
}

var _ ObjectStorage = (*MinioClient)(nil)

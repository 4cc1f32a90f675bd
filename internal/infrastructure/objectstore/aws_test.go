package objectstore

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestNewS3Client_Endpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	cfg, err := LoadAWS(context.Background(), "eu-west-1")
	if err != nil {
		t.Fatalf("LoadAWS: %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("region = %s", cfg.Region)
	}

	c := NewS3Client(cfg, "http://localhost:4566")
	o := c.Options()
	if !o.UsePathStyle || aws.ToString(o.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("endpoint options = %v / %v", o.UsePathStyle, aws.ToString(o.BaseEndpoint))
	}

	plain := NewS3Client(cfg, "").Options()
	if plain.UsePathStyle || plain.BaseEndpoint != nil {
		t.Fatal("no endpoint should keep virtual-host addressing")
	}
}

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clientdist "github.com/routekit-dev/routekit/client/dist"
)

func publishCmd() *cobra.Command {
	var (
		bucket    string
		region    string
		prefix    string
		staticDir string
		endpoint  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish client assets to S3",
		Long: `Upload the thin client bundle (and optionally a static directory)
to an S3 bucket, for serving from a CDN instead of the app server.

The client bundle is uploaded under a content-hashed key and marked
immutable, so it can be cached forever.

Credentials come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and
optionally AWS_SESSION_TOKEN; a .env file is loaded when present.

Examples:
  routekit publish --bucket my-assets --region us-east-1
  routekit publish --bucket my-assets --region us-east-1 --static public --prefix app/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), bucket, region, prefix, staticDir, endpoint)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target S3 bucket (required)")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region (default $AWS_REGION)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().StringVar(&staticDir, "static", "", "Static files directory to upload alongside the client")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint (e.g. MinIO)")
	_ = cmd.MarkFlagRequired("bucket")

	return cmd
}

func runPublish(ctx context.Context, bucket, region, prefix, staticDir, endpoint string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warn("could not load .env: %v", err)
	}
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		return fmt.Errorf("region is required: pass --region or set AWS_REGION")
	}

	client, err := newS3Client(region, endpoint)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	// Content-hashed key so old clients keep resolving while caches roll.
	sum := sha256.Sum256(clientdist.RoutekitJS)
	clientKey := path.Join(prefix, fmt.Sprintf("routekit.%x.js", sum[:8]))

	if err := putObject(ctx, client, bucket, clientKey, clientdist.RoutekitJS,
		"application/javascript; charset=utf-8", "public, max-age=31536000, immutable"); err != nil {
		return err
	}
	success("uploaded s3://%s/%s", bucket, clientKey)

	if staticDir != "" {
		n, err := publishStatic(ctx, client, bucket, prefix, staticDir)
		if err != nil {
			return err
		}
		success("uploaded %d static files from %s", n, staticDir)
	}
	return nil
}

// newS3Client builds a client from environment credentials, without
// pulling in the full default config chain.
func newS3Client(region, endpoint string) (*s3.Client, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required")
	}
	sessionToken := os.Getenv("AWS_SESSION_TOKEN")

	creds := aws.NewCredentialsCache(aws.CredentialsProviderFunc(
		func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				SessionToken:    sessionToken,
				Source:          "routekit-env",
			}, nil
		}))

	opts := s3.Options{
		Region:      region,
		Credentials: creds,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}

func putObject(ctx context.Context, client *s3.Client, bucket, key string, body []byte, contentType, cacheControl string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func publishStatic(ctx context.Context, client *s3.Client, bucket, prefix, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := path.Join(prefix, filepath.ToSlash(rel))
		if err := putObject(ctx, client, bucket, key, data, contentType, "public, max-age=300"); err != nil {
			return err
		}
		info("uploaded s3://%s/%s", bucket, key)
		count++
		return nil
	})
	return count, err
}

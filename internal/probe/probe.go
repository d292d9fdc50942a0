// Package probe checks that a running storage answers on its own protocol,
// not just that its container is up.
package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

// MinioAPIPort is the S3 API port given to "minio server --address".
const MinioAPIPort = 80

// MinIO lists buckets through the S3 API using the storage credentials.
type MinIO struct {
	Timeout time.Duration
	Port    int
}

func (p MinIO) Probe(ctx context.Context, s *storage.Storage, host string) (string, error) {
	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	port := p.Port
	if port == 0 {
		port = MinioAPIPort
	}
	endpoint := "http://" + net.JoinHostPort(host, strconv.Itoa(port))

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithRetryMaxAttempts(1),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.Username(), s.Password(), "")),
	)
	if err != nil {
		return "", fmt.Errorf("failed to configure s3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return "", fmt.Errorf("s3 api at %s: %w", endpoint, err)
	}
	return fmt.Sprintf("s3 api ok, %d bucket(s)", len(out.Buckets)), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Package storage holds the S3 client used to fetch corpus inputs and to
// upload run exports.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/polderlab/actornet/internal/util"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

func GetFile(ctx context.Context, client *s3.Client, key string) ([]byte, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return buf.Bytes(), nil
}

func PutFile(ctx context.Context, client *s3.Client, key string, file io.ReadSeeker) error {
	bucket := util.GetEnv("AWS_BUCKET")
	mimeType := mime.TypeByExtension(filepath.Ext(key))

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return nil
}

// ExportPrefix returns the key prefix under which a run's CSV exports
// are stored in the bucket.
func ExportPrefix(runID string) string {
	return fmt.Sprintf("exports/%s/", runID)
}

func ListFilesWithPrefix(ctx context.Context, client *s3.Client, prefix string) ([]string, error) {
	bucket := util.GetEnv("AWS_BUCKET")

	var keys []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}

		for _, obj := range listOutput.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return keys, nil
}

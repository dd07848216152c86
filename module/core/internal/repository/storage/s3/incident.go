package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/storage"
)

var _ storage.IncidentArchive = (*IncidentArchive)(nil)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// IncidentArchive writes each report as a JSON object under incidents/.
type IncidentArchive struct {
	client putObjectAPI
	bucket string
	region string
}

func NewIncidentArchive(client putObjectAPI, bucket, region string) *IncidentArchive {
	return &IncidentArchive{client: client, bucket: bucket, region: region}
}

func (a *IncidentArchive) Archive(ctx context.Context, report *domain.IncidentReport) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal incident: %w", err)
	}

	key := fmt.Sprintf("incidents/%s/%s.json", report.CreatedAt.UTC().Format("2006-01-02"), report.ID)
	_, err = a.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload incident: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key), nil
}

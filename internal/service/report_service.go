package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"qualiobra/internal/model"
)

// ReportExporter ships the conformity report of a committed session somewhere durable
type ReportExporter interface {
	Export(ctx context.Context, report *model.ConformityReport) error
}

// NopExporter drops reports
type NopExporter struct{}

func (NopExporter) Export(ctx context.Context, report *model.ConformityReport) error { return nil }

// S3Exporter uploads reports as JSON objects under <prefix>/<userId>/<sessionId>.json
type S3Exporter struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

// NewS3Exporter creates an exporter for bucket in region
func NewS3Exporter(region, bucket string) (*S3Exporter, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3ExporterWithUploader(s3manager.NewUploader(sess), bucket), nil
}

// NewS3ExporterWithUploader wires an existing uploader
func NewS3ExporterWithUploader(uploader s3manageriface.UploaderAPI, bucket string) *S3Exporter {
	return &S3Exporter{
		uploader: uploader,
		bucket:   bucket,
		prefix:   "diagnosticos",
	}
}

// Key returns the object key for a report
func (e *S3Exporter) Key(report *model.ConformityReport) string {
	return path.Join(e.prefix, report.UserID, report.SessionID+".json")
}

func (e *S3Exporter) Export(ctx context.Context, report *model.ConformityReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	key := e.Key(report)
	_, err = e.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("unable to upload %q to %q: %w", key, e.bucket, err)
	}

	log.Printf("Uploaded report %q to s3 bucket %q", key, e.bucket)
	return nil
}

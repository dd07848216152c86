package s3

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type fakeS3 struct {
	in   *awss3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &awss3.PutObjectOutput{}, f.err
}

func TestArchive(t *testing.T) {
	client := &fakeS3{}
	archive := NewIncidentArchive(client, "incident-reports", "ap-south-1")

	report := &domain.IncidentReport{
		ID:          "abc",
		Description: "bag snatched",
		Location:    "Latitude: 23.25, Longitude: 77.41",
		Report:      "**Incident Report**",
		CreatedAt:   time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
	}

	url, err := archive.Archive(context.Background(), report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://incident-reports.s3.ap-south-1.amazonaws.com/incidents/2024-05-06/abc.json" {
		t.Errorf("unexpected url %s", url)
	}
	if *client.in.Bucket != "incident-reports" {
		t.Errorf("unexpected bucket %s", *client.in.Bucket)
	}

	var stored domain.IncidentReport
	if err := json.Unmarshal(client.body, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stored.Description != "bag snatched" {
		t.Errorf("unexpected stored report %+v", stored)
	}
}

func TestArchive_Error(t *testing.T) {
	archive := NewIncidentArchive(&fakeS3{err: errors.New("access denied")}, "b", "r")
	if _, err := archive.Archive(context.Background(), &domain.IncidentReport{ID: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with external
// providers. This file implements the object-storage collaborator: it
// accepts a finished local artifact and copies it into a GCS bucket,
// returning the object's public URL and key. The pipeline core does not
// retry uploads; failures propagate to the orchestrator as-is.
package cloud

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
)

// GCSUploader copies finished artifacts into a bucket. It implements the
// pipeline's Uploader collaborator interface.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
}

// NewGCSUploader constructs an uploader bound to one bucket.
func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket}
}

// Upload streams the local file at contentPath to the bucket under
// objectKey and returns the object's public URL.
//
// Inputs:
//   - ctx: The context for the upload.
//   - contentPath: The local file to upload.
//   - objectKey: The destination object name within the bucket.
//
// Outputs:
//   - string: The public URL of the uploaded object.
//   - error: Any open, copy or close failure, wrapped with the object key.
func (u *GCSUploader) Upload(ctx context.Context, contentPath string, objectKey string) (string, error) {
	source, err := os.Open(contentPath)
	if err != nil {
		return "", fmt.Errorf("opening artifact %s: %w", contentPath, err)
	}
	defer func() { _ = source.Close() }()

	writer := u.Client.Bucket(u.Bucket).Object(objectKey).NewWriter(ctx)
	if _, err := io.Copy(writer, source); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("uploading %s: %w", objectKey, err)
	}
	// Close finalizes the object; an error here means the upload did not
	// commit.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing %s: %w", objectKey, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.Bucket, objectKey), nil
}

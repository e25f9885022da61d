package storage

import (
	"context"
	"io"
	"os"
	"strings"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores payloads in a Google Cloud Storage bucket. Credentials come
// from ADC, or from GCS_CREDENTIALS_JSON when running outside GCP.
type GCS struct {
	bucket string
}

func NewGCS(bucket string) *GCS {
	return &GCS{bucket: bucket}
}

func (g *GCS) client(ctx context.Context) (*gstorage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return gstorage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return gstorage.NewClient(ctx)
}

func (g *GCS) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	client, err := g.client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	w := client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (g *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &gcsReader{ReadCloser: r, client: client}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	client, err := g.client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err == gstorage.ErrObjectNotExist {
		return nil
	}
	return err
}

// gcsReader closes the client together with the object reader.
type gcsReader struct {
	io.ReadCloser
	client *gstorage.Client
}

func (r *gcsReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

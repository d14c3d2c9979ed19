package providers

import (
	"context"
	"net/http"
	"time"
)

// GenerationProvider converts a text prompt into image pixel data.
type GenerationProvider interface {
	Generate(ctx context.Context, req GenerationRequest) (*GeneratedImage, error)
}

// DeliveryProvider hosts uploaded images and serves them via public URLs.
type DeliveryProvider interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadedAsset, error)
}

// Size selects the requested image dimensions.
type Size string

const (
	SizeSquare Size = "1024x1024"
	SizeWide   Size = "1792x1024"
)

type GenerationRequest struct {
	Prompt string
	Size   Size
}

// GeneratedImage holds decoded binary pixel data. It exists only in memory
// between decode and upload and is never written to local disk.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

type UploadRequest struct {
	Image *GeneratedImage
	// ExpiresAt, when set, is attached as expiration metadata on the
	// hosted asset. Display-only; the provider does not delete the asset.
	ExpiresAt *time.Time
}

// UploadedAsset is immutable once created.
type UploadedAsset struct {
	URL string
}

type Config struct {
	APIKey    string
	AccountID string
	Timeout   int
}

// Option adjusts a provider client, primarily so tests can point it at a
// local server.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

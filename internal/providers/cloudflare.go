package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/harou24/cf-cli/internal/cferr"
)

const (
	cloudflareBaseURL        = "https://api.cloudflare.com/client/v4"
	cloudflareDefaultTimeout = 60 * time.Second
)

// Cloudflare uploads image bytes to Cloudflare Images and returns the
// first served variant URL.
type Cloudflare struct {
	config  Config
	baseURL string
	client  *http.Client
}

type cloudflareResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result struct {
		ID       string   `json:"id"`
		Variants []string `json:"variants"`
	} `json:"result"`
}

func NewCloudflare(config Config, opts ...Option) *Cloudflare {
	o := clientOptions{
		baseURL:    cloudflareBaseURL,
		httpClient: &http.Client{Timeout: cloudflareDefaultTimeout},
	}
	if config.Timeout > 0 {
		o.httpClient.Timeout = time.Duration(config.Timeout) * time.Second
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cloudflare{
		config:  config,
		baseURL: o.baseURL,
		client:  o.httpClient,
	}
}

// Upload performs a single multipart upload. There is no partial-upload
// recovery: either a URL comes back or the call fails.
func (p *Cloudflare) Upload(ctx context.Context, req UploadRequest) (*UploadedAsset, error) {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, cferr.New(cferr.Upload, "no image data to upload")
	}

	body, contentType, err := buildUploadForm(req)
	if err != nil {
		return nil, cferr.Wrap(cferr.Upload, err, "building upload form failed")
	}

	url := fmt.Sprintf("%s/accounts/%s/images/v1", p.baseURL, p.config.AccountID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, cferr.Wrap(cferr.Upload, err, "request creation failed")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, cferr.Wrap(cferr.Network, err, "upload request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cferr.Wrap(cferr.Network, err, "failed to read upload response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiResp cloudflareResponse
		if json.Unmarshal(respBody, &apiResp) == nil && len(apiResp.Errors) > 0 {
			return nil, &cferr.Error{Kind: cferr.Upload, Status: resp.StatusCode, Message: apiResp.Errors[0].Message}
		}
		return nil, &cferr.Error{Kind: cferr.Upload, Status: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp cloudflareResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, cferr.Wrap(cferr.Upload, err, "response parsing failed")
	}
	if !apiResp.Success || len(apiResp.Result.Variants) == 0 {
		return nil, cferr.New(cferr.Upload, "no variant URL in response")
	}

	return &UploadedAsset{URL: apiResp.Result.Variants[0]}, nil
}

func buildUploadForm(req UploadRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if req.ExpiresAt != nil {
		metadata, err := json.Marshal(map[string]string{
			"expires_at": req.ExpiresAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, "", fmt.Errorf("encode metadata: %w", err)
		}
		if err := writer.WriteField("metadata", string(metadata)); err != nil {
			return nil, "", fmt.Errorf("write metadata field: %w", err)
		}
	}

	filePart, err := writer.CreateFormFile("file", filenameForMIME(req.Image.MIMEType))
	if err != nil {
		return nil, "", fmt.Errorf("create file form field: %w", err)
	}
	if _, err := filePart.Write(req.Image.Data); err != nil {
		return nil, "", fmt.Errorf("write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func filenameForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return "image.jpg"
	case "image/webp":
		return "image.webp"
	case "image/gif":
		return "image.gif"
	default:
		return "image.png"
	}
}

package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/harou24/cf-cli/internal/cferr"
)

const (
	openAIBaseURL        = "https://api.openai.com/v1"
	openAIDefaultTimeout = 60 * time.Second
	openAIImageModel     = "dall-e-3"
)

// OpenAI generates images through the DALL-E 3 images endpoint.
type OpenAI struct {
	config  Config
	baseURL string
	client  *http.Client
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAI(config Config, opts ...Option) *OpenAI {
	o := clientOptions{
		baseURL:    openAIBaseURL,
		httpClient: &http.Client{Timeout: openAIDefaultTimeout},
	}
	if config.Timeout > 0 {
		o.httpClient.Timeout = time.Duration(config.Timeout) * time.Second
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &OpenAI{
		config:  config,
		baseURL: o.baseURL,
		client:  o.httpClient,
	}
}

// Generate issues a single synchronous request for exactly one
// base64-encoded image and returns the decoded bytes. DALL-E 3 only
// supports n=1.
func (p *OpenAI) Generate(ctx context.Context, req GenerationRequest) (*GeneratedImage, error) {
	if req.Prompt == "" {
		return nil, cferr.New(cferr.Argument, "prompt must not be empty")
	}
	size := req.Size
	if size == "" {
		size = SizeSquare
	}

	payload := map[string]any{
		"model":           openAIImageModel,
		"prompt":          req.Prompt,
		"n":               1,
		"size":            string(size),
		"response_format": "b64_json",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, cferr.Wrap(cferr.Generation, err, "marshal error")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/images/generations", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, cferr.Wrap(cferr.Generation, err, "request creation failed")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, cferr.Wrap(cferr.Network, err, "generation request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cferr.Wrap(cferr.Network, err, "failed to read generation response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiError openAIError
		if json.Unmarshal(body, &apiError) == nil && apiError.Error.Message != "" {
			return nil, &cferr.Error{Kind: cferr.Generation, Status: resp.StatusCode, Message: apiError.Error.Message}
		}
		return nil, &cferr.Error{Kind: cferr.Generation, Status: resp.StatusCode, Message: string(body)}
	}

	var response struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, cferr.Wrap(cferr.Generation, err, "response parsing failed")
	}
	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return nil, cferr.New(cferr.Generation, "no image in response")
	}

	data, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, cferr.Wrap(cferr.Generation, err, "image decoding failed")
	}

	return &GeneratedImage{
		Data:     data,
		MIMEType: detectMIMEType(data),
	}, nil
}

func detectMIMEType(data []byte) string {
	ct := http.DetectContentType(data)
	if ct == "application/octet-stream" {
		// DALL-E returns PNG unless asked otherwise.
		return "image/png"
	}
	return ct
}

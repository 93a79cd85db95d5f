package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
)

// Options configures the OpenAI images client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the OpenAI image edit API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// EditRequest captures one call to the image edit endpoint.
type EditRequest struct {
	ImagePath string
	Prompt    string
	N         int
	Size      string
}

// ImageDatum is a single result item. Exactly one of URL or B64JSON is set
// depending on the response format the provider chose.
type ImageDatum struct {
	URL     string `json:"url"`
	B64JSON string `json:"b64_json"`
}

// EditResponse is the normalized result of an edit call.
type EditResponse struct {
	Created int64        `json:"created"`
	Data    []ImageDatum `json:"data"`
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
		Param   string `json:"param"`
	} `json:"error"`
}

// transportAttempts bounds retries of transport-level failures. HTTP error
// responses are never retried here.
const transportAttempts = 3

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-image-1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

// EditImage submits the image plus prompt to the edit endpoint and returns
// the raw result items. Failures carry an *APIError when the provider
// answered with a structured error body.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*EditResponse, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("openai: prompt is required")
	}
	imageBytes, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("openai: read image: %w", err)
	}

	body, contentType, err := encodeEditForm(c.model, req, prompt, imageBytes)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/images/edits"
	var lastErr error
	for attempt := 1; attempt <= transportAttempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("openai: build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", contentType)
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("openai: http request: %w", err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}
		out, err := decodeEditResponse(resp)
		if err != nil {
			return nil, err
		}
		c.logger.Debug().
			Str("model", c.model).
			Int("n", req.N).
			Str("size", req.Size).
			Int("results", len(out.Data)).
			Msg("openai: edit call succeeded")
		return out, nil
	}
	return nil, lastErr
}

// Download fetches generated image bytes from a result URL.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("openai: invalid image url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openai: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read image: %w", err)
	}
	return data, nil
}

func encodeEditForm(model string, req EditRequest, prompt string, imageBytes []byte) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	filename := filepath.Base(req.ImagePath)
	if filename == "" || filename == "." {
		filename = "image.png"
	}
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", fmt.Errorf("openai: encode form: %w", err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, "", fmt.Errorf("openai: encode form: %w", err)
	}
	fields := map[string]string{
		"model":  model,
		"prompt": prompt,
	}
	if req.N > 0 {
		fields["n"] = strconv.Itoa(req.N)
	}
	if size := strings.TrimSpace(req.Size); size != "" {
		fields["size"] = size
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("openai: encode form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("openai: encode form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func decodeEditResponse(resp *http.Response) (*EditResponse, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var envelope apiErrorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
			detail := envelope.Error
			return nil, &APIError{
				Kind:       classifyError(resp.StatusCode, detail.Code, detail.Param, detail.Type),
				StatusCode: resp.StatusCode,
				Code:       detail.Code,
				Param:      detail.Param,
				Type:       detail.Type,
				Message:    detail.Message,
			}
		}
		return nil, &APIError{
			Kind:       classifyError(resp.StatusCode, "", "", ""),
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(raw)),
		}
	}
	var decoded EditResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	return &decoded, nil
}

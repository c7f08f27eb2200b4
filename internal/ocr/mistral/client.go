package mistral

import (
	"bytes"
	"context"
	"encoding/json"
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

	"scribe/internal/ocr"
)

const (
	defaultBaseURL     = "https://api.mistral.ai"
	defaultModel       = "mistral-ocr-latest"
	defaultHTTPTimeout = 120 * time.Second

	uploadPurpose = "ocr"
)

// Config captures the runtime settings required to talk to the Mistral API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client calls the Mistral OCR API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.cfg.BaseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a Mistral OCR client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Timeout returns the per-call timeout the client enforces.
func (c *Client) Timeout() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url,omitempty"`
	FileID      string `json:"file_id,omitempty"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Process submits one document for OCR extraction. Local files are uploaded
// first and then referenced by file ID, mirroring the hosted API contract.
func (c *Client) Process(ctx context.Context, doc ocr.Document, opts ocr.Options) (*ocr.Result, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, ocr.NewError(ocr.KindInvalidRequest, "mistral api key required")
	}

	request := ocrRequest{
		Model:              c.cfg.Model,
		IncludeImageBase64: opts.IncludeImages,
	}
	if model := strings.TrimSpace(opts.Model); model != "" {
		request.Model = model
	}

	switch doc.Type {
	case ocr.DocumentURL:
		request.Document = ocrDocument{Type: "document_url", DocumentURL: doc.URL}
	case ocr.DocumentFile:
		if !ocr.SupportedFile(doc.Path) {
			return nil, ocr.NewError(ocr.KindUnsupportedFileType, fmt.Sprintf("unsupported file type: %s", doc.Path))
		}
		fileID, err := c.upload(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		request.Document = ocrDocument{Type: "file_id", FileID: fileID}
	default:
		return nil, ocr.NewError(ocr.KindInvalidInput, fmt.Sprintf("unknown document type %q", doc.Type))
	}

	return c.process(ctx, request)
}

func (c *Client) process(ctx context.Context, request ocrRequest) (*ocr.Result, error) {
	encoded, err := json.Marshal(request)
	if err != nil {
		return nil, ocr.WrapError(ocr.KindInvalidRequest, "encode ocr request", err)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/ocr")
	if err != nil {
		return nil, ocr.WrapError(ocr.KindInvalidRequest, "build ocr url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, ocr.WrapError(ocr.KindInvalidRequest, "build ocr request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ocr.NewError(ocr.KindMalformedResponse, "empty ocr response")
	}

	var result ocr.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, ocr.WrapError(ocr.KindMalformedResponse, "decode ocr response", err)
	}
	if result.Pages == nil {
		return nil, ocr.NewError(ocr.KindMalformedResponse, "ocr response missing pages")
	}
	return &result, nil
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", ocr.WrapError(ocr.KindInvalidInput, fmt.Sprintf("open %s", path), err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("purpose", uploadPurpose); err != nil {
		return "", ocr.WrapError(ocr.KindInvalidRequest, "encode upload purpose", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", ocr.WrapError(ocr.KindInvalidRequest, "build upload form", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", ocr.WrapError(ocr.KindInvalidInput, fmt.Sprintf("read %s", path), err)
	}
	if err := writer.Close(); err != nil {
		return "", ocr.WrapError(ocr.KindInvalidRequest, "finalize upload form", err)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/files")
	if err != nil {
		return "", ocr.WrapError(ocr.KindInvalidRequest, "build upload url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", ocr.WrapError(ocr.KindInvalidRequest, "build upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.send(req)
	if err != nil {
		return "", err
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return "", ocr.WrapError(ocr.KindMalformedResponse, "decode upload response", err)
	}
	if strings.TrimSpace(uploaded.ID) == "" {
		return "", ocr.NewError(ocr.KindMalformedResponse, "upload response missing file id")
	}
	return uploaded.ID, nil
}

// send executes a request and returns the response body, translating
// transport failures and non-2xx statuses into classified errors.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ocr.Classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ocr.Classify(err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, ocr.ClassifyStatus(resp.StatusCode, extractAPIError(body), retryAfter)
	}
	return body, nil
}

func extractAPIError(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

// Client for the external OCR service. Results are cached by a sha256 of the
// exact submitted bytes, first in-process and then in Redis, so identical
// documents are never OCR'd twice.
package ocr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"ai-docchat-be/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

const (
	pdfEndpoint   = "/ocr/pdf/"
	imageEndpoint = "/ocr/image/"

	requestTimeout = 120 * time.Second
)

type ocrResponse struct {
	Text string `json:"text"`
}

type Client struct {
	baseURL   string
	http      *http.Client
	local     *gocache.Cache
	remote    *cache.Cache
	remoteTTL time.Duration
}

// NewClient builds an OCR client. contentCache may be nil, in which case only
// the in-process cache is used. remoteTTL <= 0 falls back to cache.DefaultTTL.
func NewClient(baseURL string, contentCache *cache.Cache, remoteTTL time.Duration) *Client {
	if remoteTTL <= 0 {
		remoteTTL = cache.DefaultTTL
	}
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: requestTimeout},
		local:     gocache.New(1*time.Hour, 10*time.Minute),
		remote:    contentCache,
		remoteTTL: remoteTTL,
	}
}

// PDF runs OCR over every page of the document and returns the joined text.
func (c *Client) PDF(ctx context.Context, data []byte) (string, error) {
	return c.extract(ctx, pdfEndpoint, "pdf_file.pdf", data)
}

// Image runs OCR over a single image.
func (c *Client) Image(ctx context.Context, data []byte) (string, error) {
	return c.extract(ctx, imageEndpoint, "image_file.jpg", data)
}

// PDFFromPath reads the file and delegates to PDF.
func (c *Client) PDFFromPath(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return c.PDF(ctx, data)
}

// ImageFromPath reads the file and delegates to Image.
func (c *Client) ImageFromPath(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return c.Image(ctx, data)
}

func (c *Client) extract(ctx context.Context, endpoint, filename string, data []byte) (string, error) {
	hash := contentHash(data)

	// An empty cached string is a real result (a blank scan), so presence is
	// checked explicitly rather than through the value.
	if v, found := c.local.Get(hash); found {
		return v.(string), nil
	}
	if c.remote != nil {
		if v, found, err := c.remote.Get(ctx, hash); err == nil && found {
			c.local.Set(hash, v, gocache.DefaultExpiration)
			return v, nil
		}
	}

	text, err := c.post(ctx, endpoint, filename, data)
	if err != nil {
		return "", err
	}

	c.local.Set(hash, text, gocache.DefaultExpiration)
	if c.remote != nil {
		// Best effort; a failed cache write never fails the extraction.
		_ = c.remote.Set(ctx, hash, text, c.remoteTTL)
	}

	return text, nil
}

func (c *Client) post(ctx context.Context, endpoint, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, string(payload))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return out.Text, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package photo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultUploadTimeout = 15 * time.Second

// Upload is the result of storing a photo.
type Upload struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path"`
}

// Uploader sends photos to Cloudinary using an unsigned upload preset.
type Uploader struct {
	httpClient *http.Client
	cloud      string
	preset     string
	timeout    time.Duration

	// Overridable for testing.
	uploadURL string
}

// NewUploader creates a Cloudinary uploader.
func NewUploader(cloud, preset string, timeout time.Duration) (*Uploader, error) {
	if cloud == "" || preset == "" {
		return nil, fmt.Errorf("cloudinary cloud name and upload preset are required")
	}
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &Uploader{
		httpClient: &http.Client{},
		cloud:      cloud,
		preset:     preset,
		timeout:    timeout,
		uploadURL:  fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cloud),
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores the photo read from r under publicID. The request is
// abandoned after the uploader's timeout.
func (u *Uploader) Upload(ctx context.Context, publicID, filename string, r io.Reader) (result *Upload, err error) {
	if publicID == "" {
		return nil, fmt.Errorf("public id is required")
	}
	if filename == "" {
		filename = "photo.jpg"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("upload_preset", u.preset); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	if err := mw.WriteField("public_id", publicID); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading photo: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding upload response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, msg)
	}

	link := out.SecureURL
	if link == "" {
		link = out.URL
	}
	path := out.PublicID
	if path == "" {
		path = publicID
	}
	return &Upload{URL: link, Path: path}, nil
}

// UploadOrKeepPath uploads the photo and, on failure, logs the error and
// returns only the intended path so the visit can be saved without a URL.
func (u *Uploader) UploadOrKeepPath(ctx context.Context, publicID, filename string, r io.Reader) *Upload {
	res, err := u.Upload(ctx, publicID, filename, r)
	if err != nil {
		slog.Warn("photo upload failed, keeping path only", "public_id", publicID, "error", err)
		return &Upload{Path: publicID}
	}
	return res
}

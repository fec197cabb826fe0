package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Minimal valid PNG header plus padding, enough for MIME sniffing.
func pngBytes(size int) []byte {
	header := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	buf := make([]byte, size)
	copy(buf, header)
	return buf
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(t.TempDir(), 2*1024*1024)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestUploadSuccess(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "photo", "me.png", pngBytes(1024))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message  string `json:"message"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Image uploaded" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if !strings.HasPrefix(resp.ImageURL, "uploads/") || !strings.HasSuffix(resp.ImageURL, ".png") {
		t.Errorf("unexpected image url %q", resp.ImageURL)
	}
	if strings.HasPrefix(resp.ImageURL, "/") {
		t.Errorf("image url must be relative, got %q", resp.ImageURL)
	}

	// The file landed on disk under the generated name
	stored := filepath.Join(h.dir, strings.TrimPrefix(resp.ImageURL, "uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		filename      string
		content       []byte
		expectedError string
	}{
		{
			name:          "wrong field name",
			field:         "file",
			filename:      "me.png",
			content:       pngBytes(128),
			expectedError: "No file uploaded",
		},
		{
			name:          "disallowed extension",
			field:         "photo",
			filename:      "script.svg",
			content:       pngBytes(128),
			expectedError: "Only image files (jpeg, jpg, png, gif) are allowed",
		},
		{
			name:          "extension does not match bytes",
			field:         "photo",
			filename:      "fake.png",
			content:       []byte("<html>not an image</html>"),
			expectedError: "Only image files (jpeg, jpg, png, gif) are allowed",
		},
		{
			name:          "over size cap",
			field:         "photo",
			filename:      "huge.png",
			content:       pngBytes(3 * 1024 * 1024),
			expectedError: "File too large. Max size is 2MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.Upload(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tt.expectedError {
				t.Errorf("expected error %q, got %q", tt.expectedError, resp.Error)
			}
		})
	}
}

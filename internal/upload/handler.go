package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
)

var allowedImageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Handler stores uploaded profile and mixtape photos on disk and hands
// back a relative URL the client persists verbatim.
type Handler struct {
	dir          string
	maxSizeBytes int64
}

func NewHandler(dir string, maxSizeBytes int64) (*Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Handler{dir: dir, maxSizeBytes: maxSizeBytes}, nil
}

type uploadError struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

// Upload serves POST /api/upload. The image arrives as multipart field
// "photo"; anything over the size cap or outside the image allow-list is
// rejected before touching disk.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes+4096)
	if err := r.ParseMultipartForm(h.maxSizeBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.RespondJSON(w, uploadError{Error: "File too large. Max size is 2MB"}, http.StatusBadRequest)
			return
		}
		httputil.RespondJSON(w, uploadError{Error: "No file uploaded"}, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		httputil.RespondJSON(w, uploadError{Error: "No file uploaded"}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxSizeBytes {
		httputil.RespondJSON(w, uploadError{Error: "File too large. Max size is 2MB"}, http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageTypes[ext]; !ok {
		httputil.RespondJSON(w, uploadError{Error: "Only image files (jpeg, jpg, png, gif) are allowed"}, http.StatusBadRequest)
		return
	}

	// Sniff the actual bytes; the extension alone is client-controlled.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		logger.Error("failed to read upload", "error", err)
		httputil.RespondJSON(w, uploadError{Error: "No file uploaded"}, http.StatusBadRequest)
		return
	}
	if !isAllowedMIME(http.DetectContentType(head[:n])) {
		httputil.RespondJSON(w, uploadError{Error: "Only image files (jpeg, jpg, png, gif) are allowed"}, http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		logger.Error("failed to rewind upload", "error", err)
		httputil.RespondErrorWithCode(w, "Failed to store file.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.dir, filename))
	if err != nil {
		logger.Error("failed to create upload file", "error", err)
		httputil.RespondErrorWithCode(w, "Failed to store file.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.Error("failed to write upload file", "error", err)
		httputil.RespondErrorWithCode(w, "Failed to store file.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// Relative path, no leading slash; clients store it as-is and read
	// surfaces absolutize it.
	httputil.RespondJSON(w, uploadResponse{
		Message:  "Image uploaded",
		ImageURL: "uploads/" + filename,
	}, http.StatusOK)
}

func isAllowedMIME(mime string) bool {
	for _, allowed := range allowedImageTypes {
		if mime == allowed {
			return true
		}
	}
	return false
}

package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadRequest mirrors the fields needed for analyze-upload validation.
type UploadRequest struct {
	Filename string
	Size     int64
	MaxBytes int64
}

// ValidateUploadRequest checks the uploaded image before it is forwarded to
// the analysis service.
func ValidateUploadRequest(req UploadRequest) []FieldError {
	var errs []FieldError

	if req.Filename == "" {
		errs = append(errs, FieldError{Field: "file", Message: "an image file is required"})
		return errs
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedImageExtensions[ext] {
		errs = append(errs, FieldError{Field: "file", Message: "file must be a JPEG or PNG image"})
	}

	if req.MaxBytes > 0 && req.Size > req.MaxBytes {
		errs = append(errs, FieldError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d MB size limit", req.MaxBytes/(1<<20)),
		})
	}

	return errs
}

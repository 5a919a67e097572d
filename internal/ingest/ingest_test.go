package ingest

import (
	stderrors "errors"
	"testing"

	"atscore/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		size      int64
		wantCode  string
	}{
		{
			name:      "valid pdf under the limit",
			mediaType: "application/pdf",
			size:      1024,
			wantCode:  "",
		},
		{
			name:      "pdf with charset parameter",
			mediaType: "application/pdf; charset=binary",
			size:      1024,
			wantCode:  "",
		},
		{
			name:      "pdf exactly at the limit",
			mediaType: "application/pdf",
			size:      MaxUploadSize,
			wantCode:  "",
		},
		{
			name:      "pdf over the limit",
			mediaType: "application/pdf",
			size:      MaxUploadSize + 1,
			wantCode:  errors.ErrCodeFileTooLarge,
		},
		{
			name:      "plain text rejected",
			mediaType: "text/plain",
			size:      10,
			wantCode:  errors.ErrCodeInvalidMediaType,
		},
		{
			name:      "docx rejected",
			mediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			size:      10,
			wantCode:  errors.ErrCodeInvalidMediaType,
		},
		{
			name:      "empty media type rejected",
			mediaType: "",
			size:      10,
			wantCode:  errors.ErrCodeInvalidMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mediaType, tt.size)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) {
				t.Fatalf("Validate() = %v, want *errors.AppError", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", appErr.Code, tt.wantCode)
			}
			if appErr.Type != errors.ErrorTypeValidation {
				t.Errorf("error type = %q, want %q", appErr.Type, errors.ErrorTypeValidation)
			}
		})
	}
}

func TestExtractTextRejectsBeforeParsing(t *testing.T) {
	// Garbage bytes with a wrong media type must fail validation, not parsing.
	_, err := ExtractText("text/plain", []byte("just some text"))

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("ExtractText() = %v, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeInvalidMediaType {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeInvalidMediaType)
	}
}

func TestExtractTextCorruptDocument(t *testing.T) {
	_, err := ExtractText("application/pdf", []byte("%PDF-1.4 truncated garbage"))

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("ExtractText() = %v, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeFileNotReadable {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeFileNotReadable)
	}
}

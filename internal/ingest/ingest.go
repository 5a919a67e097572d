package ingest

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"atscore/internal/errors"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize is the largest resume document accepted, in bytes.
const MaxUploadSize = 10 << 20 // 10 MiB

// MediaTypePDF is the only media type accepted for uploaded resumes.
const MediaTypePDF = "application/pdf"

// Validate checks the declared media type and size of an uploaded document
// before any extraction work happens.
func Validate(mediaType string, size int64) error {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil || parsed != MediaTypePDF {
		return errors.NewValidationError(
			errors.ErrCodeInvalidMediaType,
			fmt.Sprintf("unsupported media type %q: only PDF resumes are accepted", mediaType),
			err,
		)
	}
	if size > MaxUploadSize {
		return errors.NewValidationError(
			errors.ErrCodeFileTooLarge,
			fmt.Sprintf("document is %d bytes, limit is %d", size, MaxUploadSize),
			nil,
		).WithContext("size", size).WithContext("limit", MaxUploadSize)
	}
	return nil
}

// ExtractText validates the document and returns the full plain text of
// every page. The whole text is the analysis input; file names carry no
// meaning here.
func ExtractText(mediaType string, data []byte) (string, error) {
	if err := Validate(mediaType, int64(len(data))); err != nil {
		return "", err
	}

	raw, err := extractPDFText(data)
	if err != nil {
		return "", errors.NewIOError(
			errors.ErrCodeFileNotReadable,
			"failed to parse PDF document",
			err,
		)
	}

	extracted := strings.TrimSpace(raw)
	if extracted == "" {
		return "", errors.NewValidationError(
			errors.ErrCodeEmptyDocument,
			"no extractable text found in document",
			nil,
		)
	}
	return extracted, nil
}

// extractPDFText walks every page and concatenates its plain text. The pdf
// package panics on some malformed inputs, so the panic is converted into
// an ordinary parse error.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip pages the extractor cannot decode
		}
		builder.WriteString(content)
	}
	return builder.String(), nil
}

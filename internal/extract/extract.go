package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"contextchat/internal/pkg/pdfextract"
)

// Result is the outcome of content extraction for a single file. Degraded
// means Text is a placeholder description rather than the file's true text.
type Result struct {
	Text     string
	Degraded bool
}

// Extract derives plain text from a stored file's bytes. It is a pure
// function of its inputs and never panics or returns an error: any internal
// parser failure degrades to a descriptive placeholder so one bad file cannot
// abort the processing of others.
func Extract(data []byte, mediaType, filename string) Result {
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch {
	case isTextLike(mediaType, filename):
		return Result{Text: string(data)}
	case mediaType == "application/pdf":
		return extractPDF(data, filename)
	case strings.HasPrefix(mediaType, "image/"):
		return Result{Text: fmt.Sprintf(
			"[Image File: %s, Type: %s, Size: %d bytes]\n\nThis image has been uploaded and is available for analysis. The assistant can view and analyze this image when referenced in conversations.",
			filename, mediaType, len(data))}
	default:
		return Result{Text: fmt.Sprintf(
			"[File: %s, Type: %s, Size: %d bytes]\n\nThis file has been uploaded but automatic content extraction is not supported for this file type. The file is stored and available for download.",
			filename, mediaType, len(data))}
	}
}

var textExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".csv":  true,
	".log":  true,
	".json": true,
	".xml":  true,
}

func isTextLike(mediaType, filename string) bool {
	if strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/json" ||
		mediaType == "application/xml" {
		return true
	}
	return textExtensions[strings.ToLower(filepath.Ext(filename))]
}

func extractPDF(data []byte, filename string) Result {
	text, err := pdfPages(data)
	if err != nil {
		return Result{
			Text: fmt.Sprintf(
				"[PDF Document: %s, Size: %d bytes]\n\nAutomatic text extraction failed for this document. The file is stored and available. Please request specific page ranges or smaller excerpts to analyze.",
				filename, len(data)),
			Degraded: true,
		}
	}
	if strings.TrimSpace(text) == "" {
		return Result{
			Text: fmt.Sprintf(
				"[PDF Document: %s, Size: %d bytes]\n\nNo text could be extracted from this PDF.",
				filename, len(data)),
			Degraded: true,
		}
	}
	return Result{Text: text}
}

// pdfPages shields callers from parser panics on malformed input.
func pdfPages(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return pdfextract.ExtractPages(data)
}

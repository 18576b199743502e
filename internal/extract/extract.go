// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns uploaded documents into bounded query text. The
// engine never sees raw file bytes: this boundary hands it already
// normalized, length-capped text.
//
// See docs/ARCHITECTURE § Document Extraction.
package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// maxFileBytes bounds how much of an upload is read. Text beyond the
// engine's query budget is discarded anyway.
const maxFileBytes = 1 << 20

// supportedExtensions lists the file types the extractor accepts.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Supported reports whether the extractor handles the file type.
func Supported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SupportedList names the accepted extensions for error messages.
func SupportedList() string { return ".txt, .md" }

// Text reads an uploaded document and returns whitespace-normalized text
// truncated to maxChars characters. An unsupported extension or a file
// with no readable text is an error.
func Text(filename string, r io.Reader, maxChars int) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q (supported: %s)", ext, SupportedList())
	}

	data, err := io.ReadAll(io.LimitReader(r, maxFileBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}

	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", fmt.Errorf("no readable text in %s", filename)
	}

	if maxChars > 0 {
		runes := []rune(text)
		if len(runes) > maxChars {
			text = strings.TrimSpace(string(runes[:maxChars]))
		}
	}
	return text, nil
}

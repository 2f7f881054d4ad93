package assembler

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// maxFileSizeBytes is the read ceiling. Larger files are represented by a
// placeholder instead of content so one runaway file cannot dominate the
// document.
const maxFileSizeBytes = 1_000_000

const (
	placeholderFileNotFound     = "[Error: File not found]"
	placeholderPermissionDenied = "[Error: Permission denied]"
	placeholderUndecodable      = "[Error: Binary or unsupported encoding]"
	placeholderNoMetadata       = "[Error: Could not access file metadata]"
	placeholderTooLargeFormat   = "[Error: File too large to include (%d bytes)]"
	placeholderSystemFormat     = "[Error: System error %v]"
)

var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// fileReadResult is the tagged outcome of one file read. Exactly one of
// content and placeholder is meaningful: a failed read carries a placeholder
// string, a successful read carries content (possibly empty for a zero-byte
// file). The tag, not the placeholder's surface form, decides suppression
// for header and footer files, so real content that happens to start with
// "[Error" is never misclassified.
type fileReadResult struct {
	content     string
	placeholder string
	failed      bool
}

func contentResult(content string) fileReadResult {
	return fileReadResult{content: content}
}

func placeholderResult(placeholder string) fileReadResult {
	return fileReadResult{placeholder: placeholder, failed: true}
}

// text returns what the per-file loop should emit: the content on success,
// the placeholder verbatim on failure.
func (result fileReadResult) text() string {
	if result.failed {
		return result.placeholder
	}
	return result.content
}

// readFile applies the read policy to one path: stat, size ceiling, zero-byte
// short circuit, then the ordered decoder ladder. Every failure mode maps to
// a placeholder; readFile never returns an error.
func (builder *Builder) readFile(filePath string) fileReadResult {
	fileInformation, statError := os.Stat(filePath)
	if statError != nil {
		if os.IsNotExist(statError) {
			builder.logger.Warn("file vanished before read", zap.String("path", filePath))
			return placeholderResult(placeholderFileNotFound)
		}
		builder.logger.Error("unable to stat file", zap.String("path", filePath), zap.Error(statError))
		return placeholderResult(placeholderNoMetadata)
	}
	if fileInformation.Size() > maxFileSizeBytes {
		builder.logger.Warn("file skipped, too large",
			zap.String("path", filePath), zap.Int64("bytes", fileInformation.Size()))
		return placeholderResult(fmt.Sprintf(placeholderTooLargeFormat, fileInformation.Size()))
	}
	if fileInformation.Size() == 0 {
		return contentResult("")
	}

	rawBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		switch {
		case os.IsNotExist(readError):
			return placeholderResult(placeholderFileNotFound)
		case os.IsPermission(readError):
			builder.logger.Error("permission denied reading file", zap.String("path", filePath))
			return placeholderResult(placeholderPermissionDenied)
		default:
			builder.logger.Error("system error reading file", zap.String("path", filePath), zap.Error(readError))
			return placeholderResult(fmt.Sprintf(placeholderSystemFormat, readError))
		}
	}

	decodedText, decodeSucceeded := decodeFileBytes(rawBytes)
	if !decodeSucceeded {
		builder.logger.Warn("could not decode file", zap.String("path", filePath))
		return placeholderResult(placeholderUndecodable)
	}
	return contentResult(decodedText)
}

// decodeFileBytes tries the ordered encoding ladder: strict UTF-8, UTF-8 with
// a byte-order mark, then permissive ISO-8859-1. The first successful decode
// wins; the single-byte fallback accepts any input, so the false return is a
// defensive branch for transformer failures.
func decodeFileBytes(rawBytes []byte) (string, bool) {
	if utf8.Valid(rawBytes) {
		return string(rawBytes), true
	}
	if remainder, hadMark := bytes.CutPrefix(rawBytes, utf8ByteOrderMark); hadMark && utf8.Valid(remainder) {
		return string(remainder), true
	}
	decodedBytes, _, decodeError := transform.Bytes(charmap.ISO8859_1.NewDecoder(), rawBytes)
	if decodeError != nil {
		return "", false
	}
	return string(decodedBytes), true
}

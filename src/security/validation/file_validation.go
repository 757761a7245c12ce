package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/username/tradejournal/src/logger"
)

// Import file kinds the remote importer understands.
const (
	ImportKindCSV  = "csv"
	ImportKindXLSX = "xlsx"
	ImportKindXLS  = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

var importExtensions = map[string]string{
	".csv":  ImportKindCSV,
	".xlsx": ImportKindXLSX,
	".xls":  ImportKindXLS,
}

// isBinaryContent reports whether a buffer holds NUL bytes or invalid UTF-8,
// which a CSV export never does.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	// The last rune may be cut by the sniff window.
	for i := 0; i < utf8.UTFMax && len(buf) > 0; i++ {
		if utf8.Valid(buf) {
			return false
		}
		buf = buf[:len(buf)-1]
	}
	return !utf8.Valid(buf)
}

// ValidateImportFile checks that an uploaded journal spreadsheet is what its
// extension says it is. The reader is rewound before returning.
func ValidateImportFile(filename string, file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is nil", ErrValidationFailed)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := importExtensions[ext]
	if !ok {
		logger.L.Warn("Import rejected: unsupported extension", "filename", truncateForLog(filename, 80))
		return "", fmt.Errorf("%w: file type '%s' is not supported (use .csv, .xlsx or .xls)", ErrValidationFailed, ext)
	}

	buffer := make([]byte, 1024)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrValidationFailed)
	}
	head := buffer[:n]

	switch kind {
	case ImportKindXLSX:
		if !bytes.HasPrefix(head, zipMagic) {
			logger.L.Warn("Import rejected: .xlsx without zip container")
			return "", fmt.Errorf("%w: file is not a valid .xlsx workbook", ErrValidationFailed)
		}
	case ImportKindXLS:
		if !bytes.HasPrefix(head, oleMagic) {
			logger.L.Warn("Import rejected: .xls without OLE2 header")
			return "", fmt.Errorf("%w: file is not a valid .xls workbook", ErrValidationFailed)
		}
	case ImportKindCSV:
		if isBinaryContent(head) {
			logger.L.Warn("Import rejected: binary content in CSV upload")
			return "", fmt.Errorf("%w: file appears to be binary, not CSV", ErrValidationFailed)
		}
		detected := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
		if detected != "text/plain" && detected != "text/csv" {
			logger.L.Warn("Import rejected: unexpected CSV content", "detectedContentType", detected)
			return "", fmt.Errorf("%w: detected content type '%s' is not CSV", ErrValidationFailed, detected)
		}
	}

	logger.L.Debug("Import file validated", "kind", kind)
	return kind, nil
}

// ImportContentType is the MIME type sent upstream for an import kind.
func ImportContentType(kind string) string {
	switch kind {
	case ImportKindXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ImportKindXLS:
		return "application/vnd.ms-excel"
	default:
		return "text/csv"
	}
}

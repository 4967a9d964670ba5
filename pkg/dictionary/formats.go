package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatChunk              // Chunked binary format (dict_0001.bin)
	FormatText               // "word freq" per line
	FormatTSV                // word, freq, type, title, url, description, tab separated
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // At least word count header
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab Separated Suggestion List",
		Extensions:  []string{".tsv"},
		MinSize:     1,
	},
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			log.Debugf("File %s validated as %s", filename, formatInfo.Description)
			return nil
		}
	}
	return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
		filename, ext, formatInfo.Description, formatInfo.Extensions)
}

// DetectFileFormat attempts to detect the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var candidate FileFormat
	switch ext {
	case ".bin":
		candidate = FormatChunk
	case ".txt":
		candidate = FormatText
	case ".tsv":
		candidate = FormatTSV
	default:
		return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
	}
	if err := ValidateFileFormat(filename, candidate); err != nil {
		return FormatUnknown, err
	}
	return candidate, nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

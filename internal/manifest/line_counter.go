// Package manifest inspects per-bag checksum manifests. Only the number of lines is
// examined; manifest entries are never parsed or verified.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

const (
	manifestExtensionConstant          = ".sha256"
	lineTerminatorConstant             = '\n'
	readBufferSizeConstant             = 64 * 1024
	openManifestErrorTemplateConstant  = "unable to open manifest %s: %w"
	readManifestErrorTemplateConstant  = "unable to read manifest %s: %w"
	closeManifestErrorTemplateConstant = "unable to close manifest %s: %w"
)

// FileOpener opens files for reading.
type FileOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// LineCounter counts lines in manifest files.
type LineCounter struct {
	opener FileOpener
}

// NewLineCounter constructs a LineCounter reading through the provided opener.
func NewLineCounter(opener FileOpener) *LineCounter {
	return &LineCounter{opener: opener}
}

// ManifestPath returns the manifest location for a bag.
func ManifestPath(checksumsDirectory string, bagName string) string {
	return filepath.Join(checksumsDirectory, bagName+manifestExtensionConstant)
}

// CountLines returns the number of lines in the manifest and whether it exists.
// A missing manifest yields zero lines and no error.
func (counter *LineCounter) CountLines(manifestPath string) (lineCount int, present bool, countError error) {
	reader, openError := counter.opener.Open(manifestPath)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf(openManifestErrorTemplateConstant, manifestPath, openError)
	}
	defer func() {
		if closeError := reader.Close(); closeError != nil && countError == nil {
			countError = fmt.Errorf(closeManifestErrorTemplateConstant, manifestPath, closeError)
		}
	}()

	lineCount, readError := CountReaderLines(reader)
	if readError != nil {
		return 0, true, fmt.Errorf(readManifestErrorTemplateConstant, manifestPath, readError)
	}
	return lineCount, true, nil
}

// CountReaderLines counts newline-terminated lines plus a trailing unterminated line.
// Empty input has zero lines; "\r\n" terminators count the same as "\n".
func CountReaderLines(reader io.Reader) (int, error) {
	buffer := make([]byte, readBufferSizeConstant)
	lineCount := 0
	var lastByte byte
	sawContent := false

	for {
		bytesRead, readError := reader.Read(buffer)
		if bytesRead > 0 {
			chunk := buffer[:bytesRead]
			lineCount += bytes.Count(chunk, []byte{lineTerminatorConstant})
			lastByte = chunk[bytesRead-1]
			sawContent = true
		}
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			return 0, readError
		}
	}

	if sawContent && lastByte != lineTerminatorConstant {
		lineCount++
	}
	return lineCount, nil
}

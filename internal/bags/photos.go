package bags

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	extensionSeparatorConstant           = "."
	patternAlternativeSeparatorConstant  = ","
	singleExtensionPatternTemplate       = "?*.%s"
	alternativeExtensionsPatternTemplate = "?*.{%s}"
	globMetaCharactersConstant           = "\\*?[]{},"
	globEscapeCharacterConstant          = "\\"
	invalidExtensionPatternTemplate      = "invalid photo extension pattern %q"
	statPhotosDirectoryErrorTemplate     = "unable to inspect photos directory %s: %w"
	listPhotosDirectoryErrorTemplate     = "unable to list photos directory %s: %w"
	inspectPhotoErrorTemplate            = "unable to inspect photo candidate %s: %w"
)

// DefaultPhotoExtensions lists the image extensions recognized when none are configured.
var DefaultPhotoExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ExtensionPhotoCounter counts files whose extension belongs to a fixed set.
type ExtensionPhotoCounter struct {
	fileSystem FileSystem
	pattern    string
}

// NewExtensionPhotoCounter compiles the extensions into a case-insensitive file name pattern.
func NewExtensionPhotoCounter(fileSystem FileSystem, extensions []string) (*ExtensionPhotoCounter, error) {
	normalizedExtensions := NormalizeExtensions(extensions)

	pattern := buildExtensionPattern(normalizedExtensions)
	if len(pattern) > 0 && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf(invalidExtensionPatternTemplate, pattern)
	}

	return &ExtensionPhotoCounter{fileSystem: fileSystem, pattern: pattern}, nil
}

// Pattern returns the compiled file name pattern, or an empty string when no extension is recognized.
func (counter *ExtensionPhotoCounter) Pattern() string {
	return counter.pattern
}

// Matches reports whether the file name carries a recognized extension.
func (counter *ExtensionPhotoCounter) Matches(fileName string) bool {
	if len(counter.pattern) == 0 {
		return false
	}
	matched, matchError := doublestar.Match(counter.pattern, strings.ToLower(fileName))
	return matchError == nil && matched
}

// CountPhotos counts recognized files directly inside photosDirectory.
// The boolean result is false when the directory is absent or is not a directory.
func (counter *ExtensionPhotoCounter) CountPhotos(photosDirectory string) (int, bool, error) {
	directoryInfo, statError := counter.fileSystem.Stat(photosDirectory)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf(statPhotosDirectoryErrorTemplate, photosDirectory, statError)
	}
	if !directoryInfo.IsDir() {
		return 0, false, nil
	}

	entries, readError := counter.fileSystem.ReadDir(photosDirectory)
	if readError != nil {
		return 0, true, fmt.Errorf(listPhotosDirectoryErrorTemplate, photosDirectory, readError)
	}

	photoCount := 0
	for _, entry := range entries {
		if !counter.Matches(entry.Name()) {
			continue
		}

		isRegular, inspectError := counter.isRegularFile(filepath.Join(photosDirectory, entry.Name()), entry)
		if inspectError != nil {
			return 0, true, fmt.Errorf(inspectPhotoErrorTemplate, entry.Name(), inspectError)
		}
		if isRegular {
			photoCount++
		}
	}

	return photoCount, true, nil
}

func (counter *ExtensionPhotoCounter) isRegularFile(entryPath string, entry fs.DirEntry) (bool, error) {
	if entry.Type().IsRegular() {
		return true, nil
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}

	targetInfo, statError := counter.fileSystem.Stat(entryPath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return targetInfo.Mode().IsRegular(), nil
}

// NormalizeExtensions trims, lower-cases, and de-duplicates extensions and strips leading dots.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	seen := make(map[string]struct{}, len(extensions))

	for _, extension := range extensions {
		candidate := strings.ToLower(strings.TrimSpace(extension))
		candidate = strings.TrimLeft(candidate, extensionSeparatorConstant)
		if len(candidate) == 0 {
			continue
		}
		if _, exists := seen[candidate]; exists {
			continue
		}
		seen[candidate] = struct{}{}
		normalized = append(normalized, candidate)
	}

	return normalized
}

func buildExtensionPattern(normalizedExtensions []string) string {
	escaped := make([]string, 0, len(normalizedExtensions))
	for _, extension := range normalizedExtensions {
		escaped = append(escaped, escapeGlobLiteral(extension))
	}

	switch len(escaped) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(singleExtensionPatternTemplate, escaped[0])
	default:
		return fmt.Sprintf(alternativeExtensionsPatternTemplate, strings.Join(escaped, patternAlternativeSeparatorConstant))
	}
}

func escapeGlobLiteral(literal string) string {
	var builder strings.Builder
	for _, character := range literal {
		if strings.ContainsRune(globMetaCharactersConstant, character) {
			builder.WriteString(globEscapeCharacterConstant)
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

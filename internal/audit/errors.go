package audit

import (
	"errors"
	"fmt"
)

const (
	mismatchExitCodeConstant            = 2
	mismatchErrorTemplateConstant       = "%d bag(s) do not match their checksum manifests"
	unsupportedFormatTemplateConstant   = "%w: %s"
	invalidFormatChoiceTemplateConstant = "%w: %w"
	missingBagsRootMessageConstant      = "no bags root configured; specify --bags-root or set audit.bags_root"
	missingChecksumsDirMessageConstant  = "no checksums directory configured; specify --checksums-dir or set audit.checksums_directory"
)

var (
	// ErrMissingBagsRoot indicates that no bags root was configured.
	ErrMissingBagsRoot = errors.New(missingBagsRootMessageConstant)

	// ErrMissingChecksumsDirectory indicates that no checksums directory was configured.
	ErrMissingChecksumsDirectory = errors.New(missingChecksumsDirMessageConstant)

	// ErrUnsupportedOutputFormat indicates an unknown report format.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
)

// MismatchError reports that at least one bag diverged from its manifest.
// The report has already been rendered when it is returned.
type MismatchError struct {
	Mismatches []Mismatch
}

// Error summarizes the number of mismatched bags.
func (mismatchError *MismatchError) Error() string {
	return fmt.Sprintf(mismatchErrorTemplateConstant, len(mismatchError.Mismatches))
}

// ExitCode returns the process exit code for a failed audit.
func (mismatchError *MismatchError) ExitCode() int {
	return mismatchExitCodeConstant
}

func unsupportedFormatError(format OutputFormat) error {
	return fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedOutputFormat, format)
}

package audit

import (
	"fmt"
	"strings"

	"github.com/temirov/bagaudit/internal/bags"
	"github.com/temirov/bagaudit/internal/utils/flags"
)

const (
	defaultBagsRootConstant            = "data/02_Models"
	defaultChecksumsDirectoryConstant  = "data/checksums"
	configurationKeySeparatorConstant  = "."
	bagsRootConfigurationKey           = "bags_root"
	checksumsDirectoryConfigurationKey = "checksums_directory"
	photoExtensionsConfigurationKey    = "photo_extensions"
	outputFormatConfigurationKey       = "output_format"
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	BagsRoot           string   `mapstructure:"bags_root"`
	ChecksumsDirectory string   `mapstructure:"checksums_directory"`
	PhotoExtensions    []string `mapstructure:"photo_extensions"`
	OutputFormat       string   `mapstructure:"output_format"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BagsRoot:           defaultBagsRootConstant,
		ChecksumsDirectory: defaultChecksumsDirectoryConstant,
		PhotoExtensions:    append([]string{}, bags.DefaultPhotoExtensions...),
		OutputFormat:       string(OutputFormatText),
	}
}

// DefaultConfigurationValues exposes the defaults keyed for the configuration loader under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := make(map[string]any, 4)
	values[qualifyConfigurationKey(prefix, bagsRootConfigurationKey)] = defaults.BagsRoot
	values[qualifyConfigurationKey(prefix, checksumsDirectoryConfigurationKey)] = defaults.ChecksumsDirectory
	values[qualifyConfigurationKey(prefix, photoExtensionsConfigurationKey)] = defaults.PhotoExtensions
	values[qualifyConfigurationKey(prefix, outputFormatConfigurationKey)] = defaults.OutputFormat
	return values
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.BagsRoot = strings.TrimSpace(configuration.BagsRoot)
	if len(sanitized.BagsRoot) == 0 {
		sanitized.BagsRoot = defaults.BagsRoot
	}

	sanitized.ChecksumsDirectory = strings.TrimSpace(configuration.ChecksumsDirectory)
	if len(sanitized.ChecksumsDirectory) == 0 {
		sanitized.ChecksumsDirectory = defaults.ChecksumsDirectory
	}

	if configuration.PhotoExtensions == nil {
		sanitized.PhotoExtensions = defaults.PhotoExtensions
	} else {
		sanitized.PhotoExtensions = append([]string{}, configuration.PhotoExtensions...)
	}

	sanitized.OutputFormat = strings.ToLower(strings.TrimSpace(configuration.OutputFormat))
	if len(sanitized.OutputFormat) == 0 {
		sanitized.OutputFormat = defaults.OutputFormat
	}

	return sanitized
}

// ParseOutputFormat normalizes a user-supplied report format.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	resolved, choiceError := flags.ResolveChoice(raw, outputFormatChoices())
	if choiceError != nil {
		return "", fmt.Errorf(invalidFormatChoiceTemplateConstant, ErrUnsupportedOutputFormat, choiceError)
	}
	return OutputFormat(resolved), nil
}

func outputFormatChoices() []string {
	return []string{string(OutputFormatText), string(OutputFormatYAML)}
}

func qualifyConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

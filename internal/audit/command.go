package audit

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/bagaudit/internal/utils"
	"github.com/temirov/bagaudit/internal/utils/flags"
	pathutils "github.com/temirov/bagaudit/internal/utils/path"
)

const (
	commandNameConstant            = "audit"
	commandShortDescription        = "Compare per-bag photo counts with checksum manifest line counts"
	commandLongDescription         = "audit walks the bags root, counts recognized photos in each <bag>/photos directory, counts lines in <checksums-dir>/<bag>.sha256, and reports every bag whose counts differ. Exits with status 2 when any bag mismatches."
	flagBagsRootName               = "bags-root"
	flagBagsRootDescription        = "Directory containing one subdirectory per bag."
	flagChecksumsDirectoryName     = "checksums-dir"
	flagChecksumsDirectoryUsage    = "Directory containing <bag>.sha256 manifests."
	flagExtensionName              = "extension"
	flagExtensionDescription       = "Recognized photo extension (repeatable, case-insensitive)."
	flagFormatName                 = "format"
	flagFormatDescription          = "Report format."
	optionsResolvedMessageConstant = "audit options resolved"
	logFieldConfigFileConstant     = "config_file"
	logFieldExtensionsConstant     = "photo_extensions"
	logFieldFormatConstant         = "format"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the loaded audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            BagDiscoverer
	PhotoCounter          PhotoCounter
	ManifestCounter       ManifestLineCounter
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the cobra command for the bag audit.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()

	command.Flags().String(flagBagsRootName, defaults.BagsRoot, flagBagsRootDescription)
	command.Flags().String(flagChecksumsDirectoryName, defaults.ChecksumsDirectory, flagChecksumsDirectoryUsage)
	command.Flags().StringSlice(flagExtensionName, defaults.PhotoExtensions, flagExtensionDescription)
	command.Flags().String(flagFormatName, defaults.OutputFormat, flags.FormatChoiceUsage(defaults.OutputFormat, outputFormatChoices(), flagFormatDescription))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	logger.Debug(
		optionsResolvedMessageConstant,
		zap.String(logFieldBagsRootConstant, options.BagsRoot),
		zap.String(logFieldChecksumsDirectoryConstant, options.ChecksumsDirectory),
		zap.Strings(logFieldExtensionsConstant, options.PhotoExtensions),
		zap.String(logFieldFormatConstant, string(options.OutputFormat)),
		zap.String(logFieldConfigFileConstant, configurationFilePath),
	)

	photoCounter, counterError := resolvePhotoCounter(builder.PhotoCounter, options.PhotoExtensions)
	if counterError != nil {
		return counterError
	}

	service := NewService(
		resolveBagDiscoverer(builder.Discoverer),
		photoCounter,
		resolveManifestLineCounter(builder.ManifestCounter),
		logger,
		utils.NewFlushingWriter(command.OutOrStdout()),
	)

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(flagBagsRootName) {
		configuration.BagsRoot, _ = command.Flags().GetString(flagBagsRootName)
	}
	if command.Flags().Changed(flagChecksumsDirectoryName) {
		configuration.ChecksumsDirectory, _ = command.Flags().GetString(flagChecksumsDirectoryName)
	}
	if command.Flags().Changed(flagExtensionName) {
		configuration.PhotoExtensions, _ = command.Flags().GetStringSlice(flagExtensionName)
	}
	if command.Flags().Changed(flagFormatName) {
		configuration.OutputFormat, _ = command.Flags().GetString(flagFormatName)
	}

	outputFormat, formatError := ParseOutputFormat(configuration.OutputFormat)
	if formatError != nil {
		return CommandOptions{}, formatError
	}

	homeExpander := builder.resolveHomeExpander()
	options := CommandOptions{
		BagsRoot:           homeExpander.Expand(configuration.BagsRoot),
		ChecksumsDirectory: homeExpander.Expand(configuration.ChecksumsDirectory),
		PhotoExtensions:    append([]string{}, configuration.PhotoExtensions...),
		OutputFormat:       outputFormat,
	}

	return options, nil
}

// resolveConfiguration returns the sanitized configuration. Flag overrides are applied
// by the caller without sanitizing.
func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}

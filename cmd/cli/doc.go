// Package cli constructs the bagaudit command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader, and zap logging.
// Execute runs the default command set; ExitStatus maps its error to a
// process exit status.
package cli

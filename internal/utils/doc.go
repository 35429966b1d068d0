// Package utils exposes helpers shared by the bagaudit commands.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper, environment
// variables, and zap logging for the CLI, plus small command plumbing helpers.
package utils

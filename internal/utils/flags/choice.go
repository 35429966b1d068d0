package flags

import (
	"errors"
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplate        = "<%s>"
	choiceSeparatorLiteral           = "|"
	choiceUsageEmptyTemplate         = "`%s`"
	choiceUsageFullTemplate          = "`%s` %s"
	unsupportedChoiceTemplate        = "%w %q; expected one of %s"
	choiceListSeparatorLiteral       = ", "
	unsupportedChoiceMessageConstant = "unsupported value"
)

// ErrUnsupportedChoice indicates that a flag value is not among the allowed choices.
var ErrUnsupportedChoice = errors.New(unsupportedChoiceMessageConstant)

// FormatChoiceUsage renders "`<a|B|c>` description" with the default choice upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := normalizeChoice(defaultChoice)

	displayed := make([]string, 0, len(choices))
	for _, choice := range uniqueChoices(choices) {
		if normalizeChoice(choice) == normalizedDefault {
			choice = strings.ToUpper(choice)
		}
		displayed = append(displayed, choice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayed, choiceSeparatorLiteral))
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ResolveChoice returns the canonical spelling of value from choices, matched case-insensitively.
func ResolveChoice(value string, choices []string) (string, error) {
	normalizedValue := normalizeChoice(value)
	allowed := uniqueChoices(choices)
	for _, choice := range allowed {
		if normalizeChoice(choice) == normalizedValue {
			return choice, nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, ErrUnsupportedChoice, value, strings.Join(allowed, choiceListSeparatorLiteral))
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmed := strings.TrimSpace(choice)
		normalized := normalizeChoice(trimmed)
		if len(normalized) == 0 {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		unique = append(unique, trimmed)
	}
	return unique
}

func normalizeChoice(choice string) string {
	return strings.ToLower(strings.TrimSpace(choice))
}

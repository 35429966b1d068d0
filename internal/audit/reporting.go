package audit

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	bagReportLineTemplateConstant = "%s: photos=%d, manifest_lines=%d\n"
	successMessageConstant        = "All bags match their checksum manifests.\n"
	failureHeaderConstant         = "Mismatched bags:\n"
	mismatchReportLineTemplate    = "  %s\n"
	yamlIndentationConstant       = 2
	renderReportErrorTemplate     = "unable to render audit report: %w"
	writeReportLineErrorTemplate  = "unable to write audit report: %w"
)

// reportRenderer streams audit results to an output sink.
type reportRenderer interface {
	BagAudited(inspection BagInspection) error
	Finish(report Report) error
}

func newReportRenderer(format OutputFormat, writer io.Writer) (reportRenderer, error) {
	switch format {
	case OutputFormatText:
		return &textReportRenderer{writer: writer}, nil
	case OutputFormatYAML:
		return &yamlReportRenderer{writer: writer}, nil
	default:
		return nil, unsupportedFormatError(format)
	}
}

// textReportRenderer prints one line per bag as soon as it is audited.
type textReportRenderer struct {
	writer io.Writer
}

func (renderer *textReportRenderer) BagAudited(inspection BagInspection) error {
	return renderer.printf(bagReportLineTemplateConstant, inspection.Name, inspection.PhotoCount, inspection.ManifestLineCount)
}

func (renderer *textReportRenderer) Finish(report Report) error {
	if report.Passed() {
		return renderer.printf(successMessageConstant)
	}

	if printError := renderer.printf(failureHeaderConstant); printError != nil {
		return printError
	}
	for _, mismatch := range report.Mismatches {
		if printError := renderer.printf(mismatchReportLineTemplate, mismatch.String()); printError != nil {
			return printError
		}
	}
	return nil
}

func (renderer *textReportRenderer) printf(format string, arguments ...any) error {
	if _, writeError := fmt.Fprintf(renderer.writer, format, arguments...); writeError != nil {
		return fmt.Errorf(writeReportLineErrorTemplate, writeError)
	}
	return nil
}

type yamlReportDocument struct {
	Bags       []BagInspection `yaml:"bags"`
	Mismatches []Mismatch      `yaml:"mismatches"`
	Passed     bool            `yaml:"passed"`
}

// yamlReportRenderer emits a single document once every bag has been audited.
type yamlReportRenderer struct {
	writer io.Writer
}

func (renderer *yamlReportRenderer) BagAudited(BagInspection) error {
	return nil
}

func (renderer *yamlReportRenderer) Finish(report Report) error {
	document := yamlReportDocument{
		Bags:       append([]BagInspection{}, report.Bags...),
		Mismatches: append([]Mismatch{}, report.Mismatches...),
		Passed:     report.Passed(),
	}

	encoder := yaml.NewEncoder(renderer.writer)
	encoder.SetIndent(yamlIndentationConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return fmt.Errorf(renderReportErrorTemplate, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(renderReportErrorTemplate, closeError)
	}
	return nil
}

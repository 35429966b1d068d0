package audit

import "fmt"

// OutputFormat enumerates supported report renderings.
type OutputFormat string

// Report formats supported by the audit command.
const (
	OutputFormatText OutputFormat = "text"
	OutputFormatYAML OutputFormat = "yaml"
)

const mismatchRecordTemplateConstant = "%s (photos=%d, checksums=%d)"

// CommandOptions captures the resolved parameters for one audit run.
type CommandOptions struct {
	BagsRoot           string
	ChecksumsDirectory string
	PhotoExtensions    []string
	OutputFormat       OutputFormat
}

// BagInspection captures the counts gathered for one bag.
type BagInspection struct {
	Name              string `yaml:"name"`
	PhotoCount        int    `yaml:"photos"`
	ManifestLineCount int    `yaml:"manifest_lines"`
	ManifestPresent   bool   `yaml:"manifest_present"`
	PhotosDirectory   string `yaml:"-"`
	ManifestPath      string `yaml:"-"`
}

// Matches reports whether the photo count equals the manifest line count.
func (inspection BagInspection) Matches() bool {
	return inspection.PhotoCount == inspection.ManifestLineCount
}

// Mismatch records a bag whose counts diverge.
type Mismatch struct {
	Name              string `yaml:"name"`
	PhotoCount        int    `yaml:"photos"`
	ManifestLineCount int    `yaml:"checksums"`
}

// String renders the mismatch as "<name> (photos=<n>, checksums=<m>)".
func (mismatch Mismatch) String() string {
	return fmt.Sprintf(mismatchRecordTemplateConstant, mismatch.Name, mismatch.PhotoCount, mismatch.ManifestLineCount)
}

// Report aggregates the outcome of one audit run.
type Report struct {
	Bags       []BagInspection
	Mismatches []Mismatch
}

// Passed reports whether every audited bag matched its manifest.
func (report Report) Passed() bool {
	return len(report.Mismatches) == 0
}

func (report *Report) record(inspection BagInspection) {
	report.Bags = append(report.Bags, inspection)
	if inspection.Matches() {
		return
	}
	report.Mismatches = append(report.Mismatches, Mismatch{
		Name:              inspection.Name,
		PhotoCount:        inspection.PhotoCount,
		ManifestLineCount: inspection.ManifestLineCount,
	})
}

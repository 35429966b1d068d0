package audit

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/bagaudit/internal/bags"
	"github.com/temirov/bagaudit/internal/manifest"
)

const (
	discoverBagsErrorTemplateConstant  = "unable to discover bags under %s: %w"
	countPhotosErrorTemplateConstant   = "unable to count photos for bag %s: %w"
	countManifestErrorTemplateConstant = "unable to count manifest lines for bag %s: %w"
	auditStartedMessageConstant        = "audit started"
	bagAuditedMessageConstant          = "bag audited"
	bagSkippedMessageConstant          = "bag skipped"
	auditCompletedMessageConstant      = "audit completed"
	logFieldBagsRootConstant           = "bags_root"
	logFieldChecksumsDirectoryConstant = "checksums_directory"
	logFieldBagConstant                = "bag"
	logFieldPhotosConstant             = "photos"
	logFieldManifestLinesConstant      = "manifest_lines"
	logFieldManifestPresentConstant    = "manifest_present"
	logFieldReasonConstant             = "reason"
	logFieldBagCountConstant           = "bags"
	logFieldMismatchCountConstant      = "mismatches"
	skipReasonMissingPhotosConstant    = "photos directory missing"
)

// Service coordinates bag discovery, counting, and reporting.
type Service struct {
	discoverer      BagDiscoverer
	photoCounter    PhotoCounter
	manifestCounter ManifestLineCounter
	logger          *zap.Logger
	outputWriter    io.Writer
}

// NewService constructs a Service using the provided dependencies.
func NewService(discoverer BagDiscoverer, photoCounter PhotoCounter, manifestCounter ManifestLineCounter, logger *zap.Logger, outputWriter io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	return &Service{
		discoverer:      discoverer,
		photoCounter:    photoCounter,
		manifestCounter: manifestCounter,
		logger:          logger,
		outputWriter:    outputWriter,
	}
}

// Run audits every bag under options.BagsRoot and renders the report.
// A *MismatchError is returned, after the report is written, when any bag diverges.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (Report, error) {
	if validationError := validateOptions(options); validationError != nil {
		return Report{}, validationError
	}

	outputFormat := options.OutputFormat
	if len(outputFormat) == 0 {
		outputFormat = OutputFormatText
	}

	renderer, rendererError := newReportRenderer(outputFormat, service.outputWriter)
	if rendererError != nil {
		return Report{}, rendererError
	}

	service.logger.Debug(
		auditStartedMessageConstant,
		zap.String(logFieldBagsRootConstant, options.BagsRoot),
		zap.String(logFieldChecksumsDirectoryConstant, options.ChecksumsDirectory),
	)

	discoveredBags, discoveryError := service.discoverer.DiscoverBags(options.BagsRoot)
	if discoveryError != nil {
		return Report{}, fmt.Errorf(discoverBagsErrorTemplateConstant, options.BagsRoot, discoveryError)
	}

	report := Report{
		Bags:       make([]BagInspection, 0, len(discoveredBags)),
		Mismatches: make([]Mismatch, 0),
	}

	for _, bag := range discoveredBags {
		if executionContext != nil {
			if contextError := executionContext.Err(); contextError != nil {
				return report, contextError
			}
		}

		inspection, audited, inspectionError := service.inspectBag(bag, options.ChecksumsDirectory)
		if inspectionError != nil {
			return report, inspectionError
		}
		if !audited {
			continue
		}

		report.record(inspection)
		if renderError := renderer.BagAudited(inspection); renderError != nil {
			return report, renderError
		}
	}

	if renderError := renderer.Finish(report); renderError != nil {
		return report, renderError
	}

	service.logger.Info(
		auditCompletedMessageConstant,
		zap.Int(logFieldBagCountConstant, len(report.Bags)),
		zap.Int(logFieldMismatchCountConstant, len(report.Mismatches)),
	)

	if !report.Passed() {
		return report, &MismatchError{Mismatches: append([]Mismatch{}, report.Mismatches...)}
	}
	return report, nil
}

func (service *Service) inspectBag(bag bags.Bag, checksumsDirectory string) (BagInspection, bool, error) {
	photosDirectory := bag.PhotosDirectory()

	photoCount, photosPresent, photoError := service.photoCounter.CountPhotos(photosDirectory)
	if photoError != nil {
		return BagInspection{}, false, fmt.Errorf(countPhotosErrorTemplateConstant, bag.Name, photoError)
	}
	if !photosPresent {
		service.logger.Debug(
			bagSkippedMessageConstant,
			zap.String(logFieldBagConstant, bag.Name),
			zap.String(logFieldReasonConstant, skipReasonMissingPhotosConstant),
		)
		return BagInspection{}, false, nil
	}

	manifestPath := manifest.ManifestPath(checksumsDirectory, bag.Name)
	lineCount, manifestPresent, manifestError := service.manifestCounter.CountLines(manifestPath)
	if manifestError != nil {
		return BagInspection{}, false, fmt.Errorf(countManifestErrorTemplateConstant, bag.Name, manifestError)
	}

	inspection := BagInspection{
		Name:              bag.Name,
		PhotoCount:        photoCount,
		ManifestLineCount: lineCount,
		ManifestPresent:   manifestPresent,
		PhotosDirectory:   photosDirectory,
		ManifestPath:      manifestPath,
	}

	service.logger.Debug(
		bagAuditedMessageConstant,
		zap.String(logFieldBagConstant, inspection.Name),
		zap.Int(logFieldPhotosConstant, inspection.PhotoCount),
		zap.Int(logFieldManifestLinesConstant, inspection.ManifestLineCount),
		zap.Bool(logFieldManifestPresentConstant, inspection.ManifestPresent),
	)

	return inspection, true, nil
}

func validateOptions(options CommandOptions) error {
	if len(strings.TrimSpace(options.BagsRoot)) == 0 {
		return ErrMissingBagsRoot
	}
	if len(strings.TrimSpace(options.ChecksumsDirectory)) == 0 {
		return ErrMissingChecksumsDirectory
	}
	return nil
}

package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/bagaudit/internal/audit"
	"github.com/temirov/bagaudit/internal/bags"
	"github.com/temirov/bagaudit/internal/filesystem"
	"github.com/temirov/bagaudit/internal/manifest"
)

const (
	serviceSubtestNameTemplateConstant = "%d_%s"
	photosDirectoryNameConstant        = "photos"
	manifestSuffixConstant             = ".sha256"
	bagsRootDirectoryNameConstant      = "02_Models"
	checksumsDirectoryNameConstant     = "checksums"
	successMessageConstant             = "All bags match their checksum manifests.\n"
	failureHeaderConstant              = "Mismatched bags:\n"
	bagSkippedLogMessageConstant       = "bag skipped"
)

type bagFixture struct {
	name            string
	photoNames      []string
	withoutPhotos   bool
	manifestContent *string
}

func manifestWith(content string) *string {
	return &content
}

type auditWorkspace struct {
	bagsRoot           string
	checksumsDirectory string
}

func newAuditWorkspace(testInstance *testing.T, fixtures []bagFixture) auditWorkspace {
	testInstance.Helper()

	workspaceRoot := testInstance.TempDir()
	workspace := auditWorkspace{
		bagsRoot:           filepath.Join(workspaceRoot, bagsRootDirectoryNameConstant),
		checksumsDirectory: filepath.Join(workspaceRoot, checksumsDirectoryNameConstant),
	}
	require.NoError(testInstance, os.MkdirAll(workspace.bagsRoot, 0o755))
	require.NoError(testInstance, os.MkdirAll(workspace.checksumsDirectory, 0o755))

	for _, fixture := range fixtures {
		bagDirectory := filepath.Join(workspace.bagsRoot, fixture.name)
		require.NoError(testInstance, os.MkdirAll(bagDirectory, 0o755))
		if !fixture.withoutPhotos {
			photosDirectory := filepath.Join(bagDirectory, photosDirectoryNameConstant)
			require.NoError(testInstance, os.MkdirAll(photosDirectory, 0o755))
			for _, photoName := range fixture.photoNames {
				require.NoError(testInstance, os.WriteFile(filepath.Join(photosDirectory, photoName), []byte("image"), 0o644))
			}
		}
		if fixture.manifestContent != nil {
			manifestPath := filepath.Join(workspace.checksumsDirectory, fixture.name+manifestSuffixConstant)
			require.NoError(testInstance, os.WriteFile(manifestPath, []byte(*fixture.manifestContent), 0o644))
		}
	}

	return workspace
}

func (workspace auditWorkspace) options(format audit.OutputFormat) audit.CommandOptions {
	return audit.CommandOptions{
		BagsRoot:           workspace.bagsRoot,
		ChecksumsDirectory: workspace.checksumsDirectory,
		PhotoExtensions:    bags.DefaultPhotoExtensions,
		OutputFormat:       format,
	}
}

func newFilesystemService(testInstance *testing.T, logger *zap.Logger, outputWriter *bytes.Buffer) *audit.Service {
	testInstance.Helper()

	fileSystem := filesystem.NewOSFileSystem()
	photoCounter, counterError := bags.NewExtensionPhotoCounter(fileSystem, bags.DefaultPhotoExtensions)
	require.NoError(testInstance, counterError)

	return audit.NewService(
		bags.NewFilesystemBagDiscoverer(fileSystem),
		photoCounter,
		manifest.NewLineCounter(fileSystem),
		logger,
		outputWriter,
	)
}

func TestServiceRunScenarios(testInstance *testing.T) {
	testCases := []struct {
		name               string
		fixtures           []bagFixture
		expectedOutput     string
		expectedMismatches []audit.Mismatch
	}{
		{
			name: "extension_filter_matches_manifest",
			fixtures: []bagFixture{
				{name: "A", photoNames: []string{"1.jpg", "2.PNG", "3.txt"}, manifestContent: manifestWith("h1  1.jpg\nh2  2.PNG\n")},
			},
			expectedOutput: "A: photos=2, manifest_lines=2\n" + successMessageConstant,
		},
		{
			name: "missing_manifest_counts_zero_lines",
			fixtures: []bagFixture{
				{name: "B", photoNames: []string{"1.jpg", "2.jpeg", "3.png", "4.webp", "5.JPG"}},
			},
			expectedOutput:     "B: photos=5, manifest_lines=0\n" + failureHeaderConstant + "  B (photos=5, checksums=0)\n",
			expectedMismatches: []audit.Mismatch{{Name: "B", PhotoCount: 5, ManifestLineCount: 0}},
		},
		{
			name: "bag_without_photos_directory_is_skipped",
			fixtures: []bagFixture{
				{name: "C", withoutPhotos: true, manifestContent: manifestWith("h1\nh2\n")},
			},
			expectedOutput: successMessageConstant,
		},
		{
			name:           "empty_bags_root",
			fixtures:       nil,
			expectedOutput: successMessageConstant,
		},
		{
			name: "matching_and_mismatched_bags",
			fixtures: []bagFixture{
				{name: "D", photoNames: []string{"a.jpg"}, manifestContent: manifestWith("h1\n")},
				{name: "E", photoNames: []string{"a.jpg", "b.jpg", "c.jpg"}, manifestContent: manifestWith("h1\nh2")},
			},
			expectedOutput:     "D: photos=1, manifest_lines=1\nE: photos=3, manifest_lines=2\n" + failureHeaderConstant + "  E (photos=3, checksums=2)\n",
			expectedMismatches: []audit.Mismatch{{Name: "E", PhotoCount: 3, ManifestLineCount: 2}},
		},
		{
			name: "empty_photos_directory_without_manifest_matches",
			fixtures: []bagFixture{
				{name: "F"},
			},
			expectedOutput: "F: photos=0, manifest_lines=0\n" + successMessageConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			workspace := newAuditWorkspace(testInstance, testCase.fixtures)
			outputBuffer := &bytes.Buffer{}
			service := newFilesystemService(testInstance, zap.NewNop(), outputBuffer)

			report, runError := service.Run(context.Background(), workspace.options(audit.OutputFormatText))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())

			if len(testCase.expectedMismatches) == 0 {
				require.NoError(testInstance, runError)
				require.True(testInstance, report.Passed())
				return
			}

			var mismatchError *audit.MismatchError
			require.True(testInstance, errors.As(runError, &mismatchError))
			require.Equal(testInstance, 2, mismatchError.ExitCode())
			require.Equal(testInstance, testCase.expectedMismatches, mismatchError.Mismatches)
			require.Equal(testInstance, testCase.expectedMismatches, report.Mismatches)
		})
	}
}

func TestServiceRunIsIdempotent(testInstance *testing.T) {
	workspace := newAuditWorkspace(testInstance, []bagFixture{
		{name: "D", photoNames: []string{"a.jpg"}, manifestContent: manifestWith("h1\n")},
		{name: "E", photoNames: []string{"a.jpg", "IMG.JPG"}},
	})

	firstOutput := &bytes.Buffer{}
	_, firstError := newFilesystemService(testInstance, zap.NewNop(), firstOutput).Run(context.Background(), workspace.options(audit.OutputFormatText))

	secondOutput := &bytes.Buffer{}
	_, secondError := newFilesystemService(testInstance, zap.NewNop(), secondOutput).Run(context.Background(), workspace.options(audit.OutputFormatText))

	require.Equal(testInstance, firstOutput.String(), secondOutput.String())
	require.Equal(testInstance, firstError, secondError)
}

func TestServiceRunLogsSkippedBags(testInstance *testing.T) {
	workspace := newAuditWorkspace(testInstance, []bagFixture{
		{name: "C", withoutPhotos: true},
	})

	logCore, observedLogs := observer.New(zap.DebugLevel)
	service := newFilesystemService(testInstance, zap.New(logCore), &bytes.Buffer{})

	report, runError := service.Run(context.Background(), workspace.options(audit.OutputFormatText))
	require.NoError(testInstance, runError)
	require.Empty(testInstance, report.Bags)

	skippedEntries := observedLogs.FilterMessage(bagSkippedLogMessageConstant).All()
	require.Len(testInstance, skippedEntries, 1)
	require.Equal(testInstance, zapcore.DebugLevel, skippedEntries[0].Level)
	require.Equal(testInstance, "C", skippedEntries[0].ContextMap()["bag"])
}

func TestServiceRunFailsWhenBagsRootMissing(testInstance *testing.T) {
	workspace := newAuditWorkspace(testInstance, nil)
	options := workspace.options(audit.OutputFormatText)
	options.BagsRoot = filepath.Join(workspace.bagsRoot, "absent")

	outputBuffer := &bytes.Buffer{}
	_, runError := newFilesystemService(testInstance, zap.NewNop(), outputBuffer).Run(context.Background(), options)
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, os.ErrNotExist)

	var mismatchError *audit.MismatchError
	require.False(testInstance, errors.As(runError, &mismatchError))
	require.Empty(testInstance, outputBuffer.String())
}

func TestServiceRunValidatesOptions(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       audit.CommandOptions
		expectedError error
	}{
		{name: "missing_bags_root", options: audit.CommandOptions{ChecksumsDirectory: "checksums"}, expectedError: audit.ErrMissingBagsRoot},
		{name: "blank_bags_root", options: audit.CommandOptions{BagsRoot: "  ", ChecksumsDirectory: "checksums"}, expectedError: audit.ErrMissingBagsRoot},
		{name: "missing_checksums_directory", options: audit.CommandOptions{BagsRoot: "bags"}, expectedError: audit.ErrMissingChecksumsDirectory},
		{name: "unsupported_format", options: audit.CommandOptions{BagsRoot: "bags", ChecksumsDirectory: "checksums", OutputFormat: "xml"}, expectedError: audit.ErrUnsupportedOutputFormat},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			discoverer := &stubBagDiscoverer{}
			service := audit.NewService(discoverer, &stubPhotoCounter{}, &stubManifestCounter{}, nil, nil)

			_, runError := service.Run(context.Background(), testCase.options)
			require.ErrorIs(testInstance, runError, testCase.expectedError)
			require.False(testInstance, discoverer.invoked)
		})
	}
}

func TestServiceRunPropagatesCounterFailures(testInstance *testing.T) {
	countFailure := errors.New("input/output error")
	discoveredBags := []bags.Bag{{Name: "A", Path: "/bags/A"}}

	testCases := []struct {
		name            string
		photoCounter    *stubPhotoCounter
		manifestCounter *stubManifestCounter
	}{
		{
			name:            "photo_counter_failure",
			photoCounter:    &stubPhotoCounter{failure: countFailure},
			manifestCounter: &stubManifestCounter{},
		},
		{
			name:            "manifest_counter_failure",
			photoCounter:    &stubPhotoCounter{count: 1, present: true},
			manifestCounter: &stubManifestCounter{failure: countFailure},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			service := audit.NewService(&stubBagDiscoverer{bags: discoveredBags}, testCase.photoCounter, testCase.manifestCounter, zap.NewNop(), outputBuffer)

			_, runError := service.Run(context.Background(), audit.CommandOptions{BagsRoot: "/bags", ChecksumsDirectory: "/checksums"})
			require.ErrorIs(testInstance, runError, countFailure)
			require.NotContains(testInstance, outputBuffer.String(), successMessageConstant)
		})
	}
}

func TestServiceRunUsesManifestPathPerBag(testInstance *testing.T) {
	manifestCounter := &stubManifestCounter{}
	service := audit.NewService(
		&stubBagDiscoverer{bags: []bags.Bag{{Name: "A", Path: "/bags/A"}, {Name: "B", Path: "/bags/B"}}},
		&stubPhotoCounter{present: true},
		manifestCounter,
		zap.NewNop(),
		&bytes.Buffer{},
	)

	_, runError := service.Run(context.Background(), audit.CommandOptions{BagsRoot: "/bags", ChecksumsDirectory: "/checksums"})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{filepath.Join("/checksums", "A.sha256"), filepath.Join("/checksums", "B.sha256")}, manifestCounter.requestedPaths)
}

func TestServiceRunStopsWhenContextCancelled(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	outputBuffer := &bytes.Buffer{}
	service := audit.NewService(
		&stubBagDiscoverer{bags: []bags.Bag{{Name: "A", Path: "/bags/A"}}},
		&stubPhotoCounter{present: true},
		&stubManifestCounter{},
		zap.NewNop(),
		outputBuffer,
	)

	_, runError := service.Run(executionContext, audit.CommandOptions{BagsRoot: "/bags", ChecksumsDirectory: "/checksums"})
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, outputBuffer.String())
}

type stubBagDiscoverer struct {
	bags    []bags.Bag
	failure error
	invoked bool
}

func (stub *stubBagDiscoverer) DiscoverBags(root string) ([]bags.Bag, error) {
	stub.invoked = true
	return stub.bags, stub.failure
}

type stubPhotoCounter struct {
	count   int
	present bool
	failure error
}

func (stub *stubPhotoCounter) CountPhotos(photosDirectory string) (int, bool, error) {
	return stub.count, stub.present, stub.failure
}

type stubManifestCounter struct {
	count          int
	present        bool
	failure        error
	requestedPaths []string
}

func (stub *stubManifestCounter) CountLines(manifestPath string) (int, bool, error) {
	stub.requestedPaths = append(stub.requestedPaths, manifestPath)
	return stub.count, stub.present, stub.failure
}

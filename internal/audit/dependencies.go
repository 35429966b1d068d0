package audit

import (
	"github.com/temirov/bagaudit/internal/bags"
	"github.com/temirov/bagaudit/internal/filesystem"
	"github.com/temirov/bagaudit/internal/manifest"
)

// BagDiscoverer lists the bags located under a bags root.
type BagDiscoverer interface {
	DiscoverBags(root string) ([]bags.Bag, error)
}

// PhotoCounter counts recognized photos in a photos directory and reports whether it exists.
type PhotoCounter interface {
	CountPhotos(photosDirectory string) (int, bool, error)
}

// ManifestLineCounter counts manifest lines and reports whether the manifest exists.
type ManifestLineCounter interface {
	CountLines(manifestPath string) (int, bool, error)
}

func resolveBagDiscoverer(discoverer BagDiscoverer) BagDiscoverer {
	if discoverer != nil {
		return discoverer
	}
	return bags.NewFilesystemBagDiscoverer(filesystem.NewOSFileSystem())
}

func resolvePhotoCounter(counter PhotoCounter, extensions []string) (PhotoCounter, error) {
	if counter != nil {
		return counter, nil
	}
	extensionCounter, counterError := bags.NewExtensionPhotoCounter(filesystem.NewOSFileSystem(), extensions)
	if counterError != nil {
		return nil, counterError
	}
	return extensionCounter, nil
}

func resolveManifestLineCounter(counter ManifestLineCounter) ManifestLineCounter {
	if counter != nil {
		return counter
	}
	return manifest.NewLineCounter(filesystem.NewOSFileSystem())
}

package bags

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

const (
	photosDirectoryNameConstant          = "photos"
	listBagsRootErrorTemplateConstant    = "unable to list bags root %s: %w"
	inspectEntryErrorTemplateConstant    = "unable to inspect bag candidate %s: %w"
	bagsRootNotDirectoryTemplateConstant = "bags root is not a directory: %s"
)

// FileSystem exposes the read-only operations needed to walk bags.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

// Bag identifies one photo collection directory.
type Bag struct {
	Name string
	Path string
}

// PhotosDirectory returns the path of the bag's photos subdirectory.
func (bag Bag) PhotosDirectory() string {
	return filepath.Join(bag.Path, photosDirectoryNameConstant)
}

// FilesystemBagDiscoverer lists bags as the immediate subdirectories of a root.
type FilesystemBagDiscoverer struct {
	fileSystem FileSystem
}

// NewFilesystemBagDiscoverer constructs a discoverer backed by the provided file system.
func NewFilesystemBagDiscoverer(fileSystem FileSystem) *FilesystemBagDiscoverer {
	return &FilesystemBagDiscoverer{fileSystem: fileSystem}
}

// DiscoverBags returns the directories directly under root in listing order.
// Plain files are ignored and symbolic links are followed one level.
func (discoverer *FilesystemBagDiscoverer) DiscoverBags(root string) ([]Bag, error) {
	rootInfo, statError := discoverer.fileSystem.Stat(root)
	if statError != nil {
		return nil, fmt.Errorf(listBagsRootErrorTemplateConstant, root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(bagsRootNotDirectoryTemplateConstant, root)
	}

	entries, readError := discoverer.fileSystem.ReadDir(root)
	if readError != nil {
		return nil, fmt.Errorf(listBagsRootErrorTemplateConstant, root, readError)
	}

	bags := make([]Bag, 0, len(entries))
	for _, entry := range entries {
		entryPath := filepath.Join(root, entry.Name())

		isDirectory, inspectError := discoverer.isDirectoryEntry(entryPath, entry)
		if inspectError != nil {
			return nil, fmt.Errorf(inspectEntryErrorTemplateConstant, entryPath, inspectError)
		}
		if !isDirectory {
			continue
		}

		bags = append(bags, Bag{Name: entry.Name(), Path: entryPath})
	}

	return bags, nil
}

func (discoverer *FilesystemBagDiscoverer) isDirectoryEntry(entryPath string, entry fs.DirEntry) (bool, error) {
	if entry.IsDir() {
		return true, nil
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}

	targetInfo, statError := discoverer.fileSystem.Stat(entryPath)
	if statError != nil {
		// dangling link
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return targetInfo.IsDir(), nil
}

// Package footage resolves Aet videos and audios into host footage items.
package footage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	DefaultPrefix    = "spr_"
	DefaultExtension = ".png"
)

// Asset is a candidate image file found in the working directory.
type Asset struct {
	// Key is the file name without prefix and extension, matched against source names.
	Key  string
	Path string
}

// Lister enumerates assets in a directory.
type Lister struct {
	Fs        afero.Fs
	Prefix    string
	Extension string
}

// NewLister returns a lister on the OS file system using the given naming
// convention. Empty values fall back to the defaults.
func NewLister(prefix, extension string) *Lister {
	return &Lister{Fs: afero.NewOsFs(), Prefix: prefix, Extension: extension}
}

func (l *Lister) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

func (l *Lister) extension() string {
	if l.Extension == "" {
		return DefaultExtension
	}
	return l.Extension
}

// List returns the assets of dir in listing order. An empty result is not an error.
func (l *Lister) List(dir string) ([]Asset, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets in %s: %w", dir, err)
	}

	prefix := strings.ToLower(l.prefix())
	ext := strings.ToLower(l.extension())

	assets := make([]Asset, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		name := info.Name()
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, ext) {
			continue
		}
		if len(name) <= len(prefix)+len(ext) {
			continue
		}
		assets = append(assets, Asset{
			Key:  name[len(prefix) : len(name)-len(ext)],
			Path: filepath.Join(dir, name),
		})
	}
	return assets, nil
}

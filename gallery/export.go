package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhpenta/imagestudio"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// ManifestFormat selects how the export manifest is written.
type ManifestFormat string

const (
	ManifestParquet ManifestFormat = "parquet"
	ManifestYAML    ManifestFormat = "yaml"
	ManifestNone    ManifestFormat = "none"
)

// ParseManifestFormat accepts "parquet", "yaml"/"yml" and "none".
func ParseManifestFormat(s string) (ManifestFormat, error) {
	switch strings.ToLower(s) {
	case "parquet", "":
		return ManifestParquet, nil
	case "yaml", "yml":
		return ManifestYAML, nil
	case "none":
		return ManifestNone, nil
	default:
		return "", fmt.Errorf("unsupported manifest format: %s (supported: parquet, yaml, none)", s)
	}
}

// ManifestEntry describes one exported image.
type ManifestEntry struct {
	Index    int64  `parquet:"index" yaml:"index"`
	File     string `parquet:"file,optional" yaml:"file,omitempty"`
	URL      string `parquet:"url,optional" yaml:"url,omitempty"`
	Alt      string `parquet:"alt" yaml:"alt"`
	MIMEType string `parquet:"mime_type,optional" yaml:"mime_type,omitempty"`
	Size     int64  `parquet:"size" yaml:"size"`
}

// yamlManifest is the document written for ManifestYAML.
type yamlManifest struct {
	ExportedAt time.Time       `yaml:"exported_at"`
	Count      int             `yaml:"count"`
	Images     []ManifestEntry `yaml:"images"`
}

// ExportResult summarizes an export.
type ExportResult struct {
	Entries  []ManifestEntry
	Manifest string // location of the manifest, empty for ManifestNone
}

// Export writes every image in g to storage under dir, newest first, and
// then a manifest describing them. Images whose source is a URL are listed
// in the manifest but not copied. A corrupt data URI fails the export.
func Export(ctx context.Context, storage imagestudio.Storage, g []imagestudio.Image, dir string, format ManifestFormat) (*ExportResult, error) {
	if storage == nil {
		return nil, imagestudio.ErrStorageNotConfigured
	}

	entries := make([]ManifestEntry, 0, len(g))
	for i, img := range g {
		entry := ManifestEntry{Index: int64(i), Alt: img.Alt}

		res, err := imagestudio.SaveImage(ctx, storage, img, dir)
		switch {
		case errors.Is(err, imagestudio.ErrNotDataURI):
			entry.URL = img.Src
		case err != nil:
			return &ExportResult{Entries: entries}, fmt.Errorf("exporting image %d: %w", i, err)
		default:
			entry.File = filepath.Base(res.Path)
			entry.MIMEType = res.MIMEType
			entry.Size = int64(res.Size)
		}
		entries = append(entries, entry)
	}

	result := &ExportResult{Entries: entries}
	if format == ManifestNone {
		return result, nil
	}

	data, name, err := encodeManifest(entries, format)
	if err != nil {
		return result, err
	}

	path := name
	if dir != "" {
		path = dir + "/" + name
	}
	location, err := storage.SaveFile(ctx, data, path, manifestContentType(format))
	if err != nil {
		return result, fmt.Errorf("writing manifest: %w", err)
	}
	result.Manifest = location
	return result, nil
}

func encodeManifest(entries []ManifestEntry, format ManifestFormat) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case ManifestParquet:
		if err := parquet.Write(&buf, entries); err != nil {
			return nil, "", fmt.Errorf("encoding parquet manifest: %w", err)
		}
		return buf.Bytes(), "manifest.parquet", nil
	case ManifestYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		doc := yamlManifest{ExportedAt: time.Now().UTC(), Count: len(entries), Images: entries}
		if err := enc.Encode(doc); err != nil {
			return nil, "", fmt.Errorf("encoding yaml manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "manifest.yaml", nil
	default:
		return nil, "", fmt.Errorf("unsupported manifest format: %s", format)
	}
}

func manifestContentType(format ManifestFormat) string {
	if format == ManifestYAML {
		return "application/yaml"
	}
	return "application/vnd.apache.parquet"
}

// ReadManifest loads the entries of a manifest written by Export.
func ReadManifest(path string) ([]ManifestEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return parquet.ReadFile[ManifestEntry](path)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var doc yamlManifest
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
		return doc.Images, nil
	default:
		return nil, fmt.Errorf("unsupported manifest file: %s", path)
	}
}

package cache

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"safemap/internal/debug"
)

// Manager handles downloading and caching Natural Earth basemap data
type Manager struct {
	cacheDir   string
	httpClient *http.Client
	files      []DataFile
}

// DataFile represents a Natural Earth dataset to download
type DataFile struct {
	Name     string // Friendly name
	URL      string // Download URL
	Base     string // Base filename (without extension)
	Optional bool   // If true, failure to download won't stop the app
}

// NaturalEarthFiles are the basemap datasets. Roads and places come from the 1:10m
// release since city-scale views need them; borders and coastlines use 1:50m.
var NaturalEarthFiles = []DataFile{
	{
		Name:     "States/Provinces",
		URL:      "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_admin_1_states_provinces.zip",
		Base:     "ne_50m_admin_1_states_provinces",
		Optional: true,
	},
	{
		Name:     "Coastlines",
		URL:      "https://naciscdn.org/naturalearth/50m/physical/ne_50m_coastline.zip",
		Base:     "ne_50m_coastline",
		Optional: true,
	},
	{
		Name:     "Roads",
		URL:      "https://naciscdn.org/naturalearth/10m/cultural/ne_10m_roads.zip",
		Base:     "ne_10m_roads",
		Optional: true,
	},
	{
		Name:     "Populated Places",
		URL:      "https://naciscdn.org/naturalearth/10m/cultural/ne_10m_populated_places.zip",
		Base:     "ne_10m_populated_places",
		Optional: true,
	},
}

// NewManager creates a new cache manager
// If cacheDir is empty, uses ~/.safemap/data
func NewManager(cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".safemap", "data")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Manager{
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		files:      NaturalEarthFiles,
	}, nil
}

// WithFiles replaces the dataset list
func (m *Manager) WithFiles(files []DataFile) *Manager {
	m.files = files
	return m
}

// EnsureData ensures all basemap data is available, downloading missing files.
// Optional files that fail to download are skipped with a warning.
func (m *Manager) EnsureData(ctx context.Context) error {
	for _, file := range m.files {
		if err := m.ensureFile(ctx, file); err != nil {
			if file.Optional {
				fmt.Printf("Warning: Skipping %s (optional): %v\n", file.Name, err)
				continue
			}
			return fmt.Errorf("failed to ensure %s: %w", file.Name, err)
		}
	}

	return nil
}

// Has reports whether a dataset's shapefile is cached
func (m *Manager) Has(file DataFile) bool {
	_, err := os.Stat(m.GetDataPath(file.Base))
	return err == nil
}

// ensureFile checks if a data file exists, downloads if needed
func (m *Manager) ensureFile(ctx context.Context, file DataFile) error {
	if m.Has(file) {
		return nil
	}

	fmt.Printf("Downloading %s...\n", file.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; safemap/1.0)")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s (URL: %s)", resp.Status, file.URL)
	}

	tmpFile, err := os.CreateTemp("", "ne_*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	debug.Log("cache: downloaded %s (%d bytes)", file.URL, n)

	tmpFile.Close()

	if err := m.extractZip(tmpFile.Name(), m.cacheDir); err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	fmt.Printf("Downloaded and extracted %s\n", file.Name)
	return nil
}

// shapefileParts are the archive members the loader reads
var shapefileParts = map[string]bool{".shp": true, ".shx": true, ".dbf": true, ".prj": true, ".cpg": true}

// extractZip flattens the shapefile parts of the archive into destDir. The .shp goes
// last and every part is renamed into place, so Has only sees complete datasets.
func (m *Manager) extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	var parts []*zip.File
	for _, f := range r.File {
		name := filepath.Base(f.Name)
		if f.FileInfo().IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !shapefileParts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		parts = append(parts, f)
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return !isShp(parts[i].Name) && isShp(parts[j].Name)
	})

	for _, f := range parts {
		if err := extractFile(f, filepath.Join(destDir, filepath.Base(f.Name))); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	return nil
}

func isShp(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".shp")
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, destPath)
}

// GetDataPath returns the shapefile path for a dataset base name
func (m *Manager) GetDataPath(base string) string {
	return filepath.Join(m.cacheDir, base+".shp")
}

// GetCacheDir returns the cache directory
func (m *Manager) GetCacheDir() string {
	return m.cacheDir
}

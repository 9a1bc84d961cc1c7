package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blog-cms/pkg/models"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadSiteFile reads site settings, picking the decoder from the file extension.
func LoadSiteFile(path string) (models.SiteConfig, error) {
	var site models.SiteConfig
	content, err := os.ReadFile(path)
	if err != nil {
		return site, err
	}
	if err := ParseSite(content, filepath.Ext(path), &site); err != nil {
		return site, fmt.Errorf("parse %s: %w", path, err)
	}
	return site, nil
}

func ParseSite(content []byte, ext string, site *models.SiteConfig) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(content, site)
	case ".toml":
		return toml.Unmarshal(content, site)
	case ".json":
		return json.Unmarshal(content, site)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
}

// ApplySite copies the non-zero settings of site into the package settings.
func ApplySite(site models.SiteConfig) {
	if site.Name != "" {
		SiteName = site.Name
	}
	if site.Language != "" {
		Language = site.Language
	}
	if site.PageSize > 0 {
		PageSize = site.PageSize
	}
	if site.DiscoveryCount > 0 {
		DiscoveryCount = site.DiscoveryCount
	}
}

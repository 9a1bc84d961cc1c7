package models

// SiteConfig is the optional site settings file. It may be written as YAML,
// TOML or JSON.
type SiteConfig struct {
	Name           string `yaml:"name" toml:"name" json:"name"`
	Language       string `yaml:"language" toml:"language" json:"language"`
	PageSize       int    `yaml:"page_size" toml:"page_size" json:"page_size"`
	DiscoveryCount int    `yaml:"discovery_count" toml:"discovery_count" json:"discovery_count"`
}

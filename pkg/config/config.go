package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	Port = "3000"

	DataFile     = "./data.json"
	ResourcesDir = "./resources"
	ArticlesDir  = "./articles"
	PublicDir    = "./public"

	ResourcesURL = "/resources"

	// Site settings
	SiteName       = "BALLAB"
	Language       = "tr"
	PageSize       = 5
	DiscoveryCount = 5

	// Optional files
	SiteConfigFile  = ""
	ArticleTemplate = ""

	// Admin settings
	SessionSecret = "change-me"
	AdminPassword = "admin123"

	MaxBodyBytes = int64(50 << 20)
	LogLevel     = slog.LevelInfo
)

func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found or error loading it.")
	}

	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return fallback
	}

	SiteConfigFile = getEnv("SITE_CONFIG", "")
	if SiteConfigFile != "" {
		site, err := LoadSiteFile(SiteConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring site config %s: %v\n", SiteConfigFile, err)
		} else {
			ApplySite(site)
		}
	}

	Port = getEnv("PORT", Port)
	DataFile = getEnv("DATA_FILE", DataFile)
	ResourcesDir = getEnv("RESOURCES_DIR", ResourcesDir)
	ArticlesDir = getEnv("ARTICLES_DIR", ArticlesDir)
	PublicDir = getEnv("PUBLIC_DIR", PublicDir)
	ArticleTemplate = getEnv("ARTICLE_TEMPLATE", ArticleTemplate)

	SiteName = getEnv("SITE_NAME", SiteName)
	Language = getEnv("SITE_LANGUAGE", Language)
	PageSize = getInt("PAGE_SIZE", PageSize)
	DiscoveryCount = getInt("DISCOVERY_COUNT", DiscoveryCount)

	SessionSecret = getEnv("SESSION_SECRET", SessionSecret)
	AdminPassword = getEnv("ADMIN_PASSWORD", AdminPassword)

	MaxBodyBytes = int64(getInt("MAX_BODY_BYTES", int(MaxBodyBytes)))

	if getEnv("LOG_LEVEL", "") == "debug" {
		LogLevel = slog.LevelDebug
	}
}

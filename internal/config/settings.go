package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/handiism/modrinth-downloader/internal/http"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth"
)

// EnvAPIURL overrides Settings.APIURL when set.
const EnvAPIURL = "MODRINTH_DL_API_URL"

// Settings holds all configuration options.
type Settings struct {
	// Catalog settings
	APIURL         string        `yaml:"api_url"`
	SiteURL        string        `yaml:"site_url"`
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Default selection, applied when no flag overrides it
	GameVersion string `yaml:"game_version"`
	Loader      string `yaml:"loader"`
	Channel     string `yaml:"channel"`

	// Bundle settings
	OutputDir     string `yaml:"output_dir"`
	ArchiveFormat string `yaml:"archive_format"` // zip, tar.gz, tar.xz
	VerifyHashes  bool   `yaml:"verify_hashes"`
	WriteChecksum bool   `yaml:"write_checksum"`
	ReportFormat  string `yaml:"report_format"` // text, markdown, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		APIURL:         modrinth.DefaultAPIURL,
		SiteURL:        modrinth.DefaultSiteURL,
		UserAgent:      http.DefaultUserAgent,
		RequestTimeout: 0,

		GameVersion: "",
		Loader:      "fabric",
		Channel:     "release",

		OutputDir:     filepath.Join(homeDir, "Downloads"),
		ArchiveFormat: "zip",
		VerifyHashes:  true,
		WriteChecksum: false,
		ReportFormat:  "text",
	}
}

// DefaultPath returns the per-user config file location,
// e.g. ~/.config/modrinth-dl/config.yaml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "modrinth-dl.yaml"
	}
	return filepath.Join(dir, "modrinth-dl", "config.yaml")
}

// Load reads settings from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings.applyEnv()
			return settings, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	settings.applyEnv()
	return settings, nil
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		s.APIURL = v
	}
}

// Criteria returns the default selection.
func (s *Settings) Criteria() model.Criteria {
	return model.Criteria{
		GameVersion: s.GameVersion,
		Loader:      s.Loader,
		Channel:     s.Channel,
	}
}

// NewHTTPClient builds the transport described by the settings.
func (s *Settings) NewHTTPClient() *http.Client {
	return http.NewClient(s.UserAgent, s.RequestTimeout)
}

// NewCatalog builds the catalog client described by the settings.
func (s *Settings) NewCatalog(client *http.Client) *modrinth.Client {
	return modrinth.NewClient(client, s.APIURL)
}

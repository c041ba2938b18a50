// Package config loads the service configuration from YAML. Secrets are
// never stored in the file; fields ending in _env name the environment
// variable that carries the value.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the journal finder.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Encoder  EncoderConfig  `yaml:"encoder"`
	Index    IndexConfig    `yaml:"index"`
	Generate GenerateConfig `yaml:"generate"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EncoderConfig holds text encoder configuration.
type EncoderConfig struct {
	Provider  string `yaml:"provider"` // "hf" or "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
	MaxTokens int    `yaml:"max_tokens"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Provider string       `yaml:"provider"` // "chroma" or "bolt"
	Chroma   ChromaConfig `yaml:"chroma"`
	Bolt     BoltConfig   `yaml:"bolt"`
}

// ChromaConfig holds Chroma Cloud connection details.
type ChromaConfig struct {
	Host        string `yaml:"host"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TenantEnv   string `yaml:"tenant_env"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// BoltConfig holds local index configuration.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// GenerateConfig holds generation proxy configuration.
type GenerateConfig struct {
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IngestConfig holds index population configuration.
type IngestConfig struct {
	BatchSize        int    `yaml:"batch_size"`
	JournalsPerField int    `yaml:"journals_per_field"`
	MailtoEnv        string `yaml:"mailto_env"`
	FieldsFile       string `yaml:"fields_file"`
	ConceptLimit     int    `yaml:"concept_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "localhost:8000",
		},
		Encoder: EncoderConfig{
			Provider:  "hf",
			Model:     "allenai/scibert_scivocab_uncased",
			APIKeyEnv: "HF_API_KEY",
			Dimension: 768,
			MaxTokens: 512,
		},
		Index: IndexConfig{
			Provider: "chroma",
			Chroma: ChromaConfig{
				APIKeyEnv:   "CHROMA_API_KEY",
				TenantEnv:   "CHROMA_TENANT",
				Database:    "journals",
				Collection:  "updated_journals",
				TimeoutSecs: 15,
			},
			Bolt: BoltConfig{
				Path: "journals.db",
			},
		},
		Generate: GenerateConfig{
			Model:       "gemini-1.5-flash",
			APIKeyEnv:   "GEMINI_API_KEY",
			TimeoutSecs: 30,
		},
		Ingest: IngestConfig{
			BatchSize:        50,
			JournalsPerField: 25,
			MailtoEnv:        "OPENALEX_MAILTO",
			ConceptLimit:     30,
		},
	}
}

// Load loads configuration from a YAML file. A missing file returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

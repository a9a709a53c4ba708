package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	// Blobs selects where raw document bytes live: "fs" or "minio".
	Blobs struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"blobs"`

	// Catalog selects where metadata lives: "fs", "sqlite", "mysql" or "postgres".
	Catalog struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"` // fs dir or sqlite file
	} `yaml:"catalog"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	// NLP selects the classifier/analyzer/synthesizer stack: "keyword" or "openai".
	NLP struct {
		Backend string `yaml:"backend"`
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
	} `yaml:"nlp"`

	Pipeline struct {
		MaxConcurrency int      `yaml:"maxConcurrency"`
		QueryTimeout   Duration `yaml:"queryTimeout"`
	} `yaml:"pipeline"`

	Auth struct {
		// APIKeys maps tenant -> key. Empty means auth disabled.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Enabled    bool `yaml:"enabled"`
		Capacity   int  `yaml:"capacity"`
		RefillRate int  `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Blobs.Backend == "" {
		c.Blobs.Backend = "fs"
	}
	if c.Blobs.Path == "" {
		c.Blobs.Path = "data/blobs"
	}
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = "fs"
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/catalog"
	}
	if c.NLP.Backend == "" {
		c.NLP.Backend = "keyword"
	}
	if c.NLP.APIKey == "" {
		c.NLP.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Pipeline.QueryTimeout == 0 {
		c.Pipeline.QueryTimeout = Duration(30 * time.Second)
	}
}

// Duration decodes "10s" style yaml values into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tieubaoca/docuchat-be/types"
)

type Config struct {
	Port            string `mapstructure:"port"`
	UploadDir       string `mapstructure:"upload_dir"`
	Provider        string `mapstructure:"provider"` // openai or gemini
	AIEndpoint      string `mapstructure:"ai_endpoint"`
	Model           string `mapstructure:"model"`
	OpenAIAPIKey    string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys   []string
	EmbeddingModel  string              `mapstructure:"embedding_model"`
	ChunkSize       int                 `mapstructure:"chunk_size"`
	ChunkOverlap    int                 `mapstructure:"chunk_overlap"`
	RetrievalK      int                 `mapstructure:"retrieval_k"`
	MaxHistory      int                 `mapstructure:"max_history"`
	MaxPromptTokens int                 `mapstructure:"max_prompt_tokens"`
	WeaviateStore   WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	Archive         ArchiveConfig       `mapstructure:"archive_config"`
}

type WeaviateStoreConfig struct {
	Host       string `mapstructure:"host"`
	APIKey     string `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Collection string `mapstructure:"collection"`
}

type ArchiveConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"ARCHIVE_ACCESS_KEY"`
	SecretKey string `mapstructure:"ARCHIVE_SECRET_KEY"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("archive_config.ARCHIVE_ACCESS_KEY", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive_config.ARCHIVE_SECRET_KEY", "ARCHIVE_SECRET_KEY")
	v.BindEnv("gemini_api_keys", "GEMINI_API_KEYS")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if keys := v.GetString("gemini_api_keys"); keys != "" {
		config.GeminiAPIKeys = strings.Split(keys, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that every required connection and model parameter is
// present. Startup fails here rather than deferring to the first call.
func (c *Config) Validate() error {
	var missing []string
	if c.WeaviateStore.Host == "" {
		missing = append(missing, "weaviate_store_config.host")
	}
	if c.WeaviateStore.Collection == "" {
		missing = append(missing, "weaviate_store_config.collection")
	}
	if c.EmbeddingModel == "" {
		missing = append(missing, "embedding_model")
	}
	switch c.Provider {
	case "openai":
		if c.Model == "" {
			missing = append(missing, "model")
		}
	case "gemini":
		if len(c.GeminiAPIKeys) == 0 {
			missing = append(missing, "GEMINI_API_KEYS")
		}
		if c.Model == "" {
			missing = append(missing, "model")
		}
	default:
		missing = append(missing, "provider")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "user_uploaded_files")
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("chunk_size", 500)
	v.SetDefault("chunk_overlap", 0)
	v.SetDefault("retrieval_k", 4)
	v.SetDefault("max_history", 10)
	v.SetDefault("max_prompt_tokens", 3000)
	v.SetDefault("archive_config.prefix", "webapp_completed_files")
}

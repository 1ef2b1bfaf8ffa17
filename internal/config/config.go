package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	CohereAPIKey string `envconfig:"COHERE_API_KEY"`

	RouterModel    string `envconfig:"ROUTER_MODEL" default:"gpt-4o-mini"`
	AnswerModel    string `envconfig:"ANSWER_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	SpeechModel    string `envconfig:"SPEECH_MODEL" default:"tts-1"`
	SpeechVoice    string `envconfig:"SPEECH_VOICE" default:"alloy"`
	RerankModel    string `envconfig:"RERANK_MODEL" default:"rerank-v3.5"`

	// Document ingestion
	DataDir      string `envconfig:"DATA_DIR" default:"resources/data"`
	ChunkSize    int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int    `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Retrieval
	RetrieveK     int     `envconfig:"RETRIEVE_K" default:"2"`
	VectorWeight  float64 `envconfig:"VECTOR_WEIGHT" default:"0.7"`
	KeywordWeight float64 `envconfig:"KEYWORD_WEIGHT" default:"0.3"`
	RerankTopN    int     `envconfig:"RERANK_TOP_N" default:"0"`

	// Optional S3 archive for synthesized audio
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"deskagent-audio"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DESKAGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// RerankTopN defaults to the per-index k
	if cfg.RerankTopN <= 0 {
		cfg.RerankTopN = cfg.RetrieveK
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasCohere() bool {
	return c.CohereAPIKey != ""
}

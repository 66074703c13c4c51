package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Vision     VisionConfig
	Quality    QualityConfig
	Confidence ConfidenceConfig
	Analysis   AnalysisConfig
	Pipeline   PipelineConfig
}

// DatabaseConfig holds scan store configuration
type DatabaseConfig struct {
	Driver           string // "postgres" or "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// VisionConfig holds vision model client configuration
type VisionConfig struct {
	Provider      string // "openai" or "gemini"
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration // per attempt
	RetryAttempts int
	RetryDelay    time.Duration // initial backoff, doubled per attempt
}

// QualityConfig holds image quality and angle detection thresholds
type QualityConfig struct {
	MinImageKB         int64
	MaxImageMB         int64
	MinWidth           int
	MinHeight          int
	PassScore          float64 // 0-100 quality gate
	MinAngleConfidence float64 // per-photo angle confidence floor
	CheckTimeout       time.Duration
}

// ConfidenceConfig holds scoring weights and the acceptance threshold.
// The weights must sum to 1.0.
type ConfidenceConfig struct {
	MinScore           float64
	WeightCompleteness float64
	WeightRange        float64
	WeightStrategy     float64
	WeightAngle        float64
	WeightConsistency  float64
}

// AnalysisConfig holds aesthetic scoring weights and classification thresholds
type AnalysisConfig struct {
	GoldenRatio            float64
	WeightGoldenRatio      float64
	WeightSymmetry         float64
	WeightComposition      float64
	WeightPosture          float64
	VTaperMinShoulderWaist float64
	AppleMinWaistHip       float64
	PearMaxWaistHip        float64
}

// PipelineConfig holds scan orchestration settings
type PipelineConfig struct {
	ScanTimeout time.Duration
	Workers     int
	QueueSize   int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Vision: VisionConfig{
			Provider:      getEnv("VISION_PROVIDER", "openai"),
			Model:         getEnv("VISION_MODEL", "gpt-4o"),
			APIKey:        getEnv("VISION_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:       getEnv("VISION_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("VISION_TEMPERATURE", 0.3),
			MaxTokens:     getEnvAsInt("VISION_MAX_TOKENS", 2000),
			Timeout:       getEnvAsDuration("VISION_TIMEOUT", 45*time.Second),
			RetryAttempts: getEnvAsInt("VISION_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("VISION_RETRY_DELAY", 1*time.Second),
		},
		Quality: QualityConfig{
			MinImageKB:         getEnvAsInt64("IMAGE_MIN_KB", 50),
			MaxImageMB:         getEnvAsInt64("IMAGE_MAX_MB", 10),
			MinWidth:           getEnvAsInt("IMAGE_MIN_WIDTH", 480),
			MinHeight:          getEnvAsInt("IMAGE_MIN_HEIGHT", 640),
			PassScore:          getEnvAsFloat64("IMAGE_PASS_SCORE", 60),
			MinAngleConfidence: getEnvAsFloat64("ANGLE_MIN_CONFIDENCE", 0.5),
			CheckTimeout:       getEnvAsDuration("QUALITY_CHECK_TIMEOUT", 10*time.Second),
		},
		Confidence: ConfidenceConfig{
			MinScore:           getEnvAsFloat64("CONFIDENCE_MIN_SCORE", 0.70),
			WeightCompleteness: getEnvAsFloat64("CONFIDENCE_W_COMPLETENESS", 0.30),
			WeightRange:        getEnvAsFloat64("CONFIDENCE_W_RANGE", 0.20),
			WeightStrategy:     getEnvAsFloat64("CONFIDENCE_W_STRATEGY", 0.20),
			WeightAngle:        getEnvAsFloat64("CONFIDENCE_W_ANGLE", 0.15),
			WeightConsistency:  getEnvAsFloat64("CONFIDENCE_W_CONSISTENCY", 0.15),
		},
		Analysis: AnalysisConfig{
			GoldenRatio:            getEnvAsFloat64("GOLDEN_RATIO", 1.618),
			WeightGoldenRatio:      getEnvAsFloat64("AESTHETIC_W_GOLDEN", 0.40),
			WeightSymmetry:         getEnvAsFloat64("AESTHETIC_W_SYMMETRY", 0.30),
			WeightComposition:      getEnvAsFloat64("AESTHETIC_W_COMPOSITION", 0.20),
			WeightPosture:          getEnvAsFloat64("AESTHETIC_W_POSTURE", 0.10),
			VTaperMinShoulderWaist: getEnvAsFloat64("VTAPER_MIN_STW", 1.4),
			AppleMinWaistHip:       getEnvAsFloat64("APPLE_MIN_WHR", 0.95),
			PearMaxWaistHip:        getEnvAsFloat64("PEAR_MAX_WHR", 0.85),
		},
		Pipeline: PipelineConfig{
			ScanTimeout: getEnvAsDuration("SCAN_TIMEOUT", 3*time.Minute),
			Workers:     getEnvAsInt("SCAN_WORKERS", 4),
			QueueSize:   getEnvAsInt("SCAN_QUEUE_SIZE", 256),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "VISION_API_KEY is required", ErrInvalidInput)
	}
	if c.Vision.RetryAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "VISION_RETRY_ATTEMPTS must be at least 1", ErrInvalidInput)
	}
	sum := c.Confidence.WeightCompleteness + c.Confidence.WeightRange +
		c.Confidence.WeightStrategy + c.Confidence.WeightAngle + c.Confidence.WeightConsistency
	if sum < 0.999 || sum > 1.001 {
		return NewAppError("CONFIG_ERROR", "confidence weights must sum to 1.0", ErrInvalidInput)
	}
	return nil
}

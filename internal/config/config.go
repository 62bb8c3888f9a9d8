package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr            string
	LogLevel            string
	LogFile             string
	MySQLDSN            string
	SQLitePath          string
	JWTSecret           string
	JWTAlgorithm        string
	WSWriteTimeout      time.Duration
	ListLimit           int
	RetentionAge        time.Duration
	RetentionInterval   time.Duration
	RabbitMQURL         string
	RabbitExchange      string
	RabbitQueue         string
	RabbitRoutingKey    string
	RabbitConsumerTag   string
	RabbitPublishPrefix string
	OTELServiceName     string
	ServiceVersion      string
	Environment         string
	TraceSampleRatio    float64
	OTLPEndpoint        string
	OTLPInsecure        bool
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:            ":8080",
		LogFile:             "logs/notify_hub.log",
		JWTAlgorithm:        "HS256",
		WSWriteTimeout:      10 * time.Second,
		ListLimit:           5,
		RetentionAge:        30 * 24 * time.Hour,
		RetentionInterval:   time.Hour,
		RabbitExchange:      "domain-events",
		RabbitQueue:         "notify-hub.events",
		RabbitRoutingKey:    "notification.*",
		RabbitConsumerTag:   "notify-hub",
		RabbitPublishPrefix: "notification",
		OTELServiceName:     "notify-hub",
		ServiceVersion:      "dev",
		Environment:         "local",
		TraceSampleRatio:    1,
		OTLPInsecure:        true,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		cfg.JWTAlgorithm = v
	}

	if v := os.Getenv("RABBITMQ_EXCHANGE"); v != "" {
		cfg.RabbitExchange = v
	}
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitQueue = v
	}
	if v := os.Getenv("RABBITMQ_ROUTING_KEY"); v != "" {
		cfg.RabbitRoutingKey = v
	}
	if v := os.Getenv("RABBITMQ_CONSUMER_TAG"); v != "" {
		cfg.RabbitConsumerTag = v
	}
	if v := os.Getenv("RABBITMQ_PUBLISH_PREFIX"); v != "" {
		cfg.RabbitPublishPrefix = v
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		cfg.ServiceVersion = v
	}
	if v := os.Getenv("DEPLOYMENT_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.TraceSampleRatio = f
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	if n, ok := positiveInt("WS_WRITE_TIMEOUT_SECONDS"); ok {
		cfg.WSWriteTimeout = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt("LIST_LIMIT"); ok {
		cfg.ListLimit = n
	}
	if n, ok := positiveInt("RETENTION_DAYS"); ok {
		cfg.RetentionAge = time.Duration(n) * 24 * time.Hour
	}
	if n, ok := positiveInt("RETENTION_INTERVAL_MINUTES"); ok {
		cfg.RetentionInterval = time.Duration(n) * time.Minute
	}

	return cfg
}

func positiveInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

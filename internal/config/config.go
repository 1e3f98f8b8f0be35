package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// Config stores runtime configuration for one pipeline run.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	// UserTeamName selects whose squad the brief is written for. It has
	// no default: a run without an explicit identity must fail loudly.
	UserTeamName string

	ExportDir string

	SnapshotsEnabled        bool
	DBURL                   string
	DBDisablePreparedBinary bool

	BiwengerCDNBaseURL          string
	BiwengerAppBaseURL          string
	BiwengerEmail               string
	BiwengerPassword            string
	BiwengerToken               string
	BiwengerLeagueID            int64
	BiwengerUserID              int64
	BiwengerScoreType           int
	BiwengerTimeout             time.Duration
	BiwengerMaxRetries          int
	BiwengerCircuitEnabled      bool
	BiwengerCircuitFailureCount int
	BiwengerCircuitOpenTimeout  time.Duration
	BiwengerCircuitHalfOpenReq  int

	ComuniateEnabled    bool
	ComuniateBaseURL    string
	ComuniateMode       string
	ComuniatePoolSize   int
	ComuniateTimeout    time.Duration
	ComuniateMaxRetries int

	OddsEnabled    bool
	OddsBaseURL    string
	OddsLeagueID   int
	OddsTimeout    time.Duration
	OddsMaxRetries int

	NewsEnabled  bool
	NewsFeedURL  string
	NewsTimeout  time.Duration
	NewsMaxItems int

	ReportWebhookEnabled      bool
	ReportWebhookTargetURL    string
	ReportWebhookToken        string
	ReportWebhookTimeout      time.Duration
	ReportWebhookMaxRetries   int
	ReportCircuitEnabled      bool
	ReportCircuitFailureCount int
	ReportCircuitOpenTimeout  time.Duration
	ReportCircuitHalfOpenReq  int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "fantasy-crew-pipeline"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		ExportDir:      strings.TrimSpace(getEnv("EXPORT_DIR", "./out")),
	}

	cfg.UserTeamName = strings.TrimSpace(getEnv("USER_TEAM_NAME", ""))
	if cfg.UserTeamName == "" {
		return Config{}, fmt.Errorf("USER_TEAM_NAME is required")
	}

	snapshotsEnabled, err := strconv.ParseBool(getEnv("SNAPSHOTS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOTS_ENABLED: %w", err)
	}
	cfg.SnapshotsEnabled = snapshotsEnabled
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.SnapshotsEnabled && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when SNAPSHOTS_ENABLED=true")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	if err := loadBiwenger(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadComuniate(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadOdds(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadNews(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadReportWebhook(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadBiwenger(cfg *Config) error {
	cfg.BiwengerCDNBaseURL = strings.TrimSpace(getEnv("BIWENGER_CDN_BASE_URL", "https://cf.biwenger.com/api/v2"))
	cfg.BiwengerAppBaseURL = strings.TrimSpace(getEnv("BIWENGER_APP_BASE_URL", "https://biwenger.as.com/api/v2"))
	cfg.BiwengerEmail = strings.TrimSpace(getEnv("BIWENGER_EMAIL", ""))
	cfg.BiwengerPassword = getEnv("BIWENGER_PASSWORD", "")
	cfg.BiwengerToken = strings.TrimSpace(getEnv("BIWENGER_TOKEN", ""))
	if cfg.BiwengerToken == "" && (cfg.BiwengerEmail == "" || cfg.BiwengerPassword == "") {
		return fmt.Errorf("BIWENGER_TOKEN or BIWENGER_EMAIL+BIWENGER_PASSWORD is required")
	}

	leagueID, err := getEnvAsInt64("BIWENGER_LEAGUE_ID", 0)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_LEAGUE_ID: %w", err)
	}
	cfg.BiwengerLeagueID = leagueID

	userID, err := getEnvAsInt64("BIWENGER_USER_ID", 0)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_USER_ID: %w", err)
	}
	cfg.BiwengerUserID = userID

	scoreType, err := getEnvAsInt("BIWENGER_SCORE_TYPE", 1)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_SCORE_TYPE: %w", err)
	}
	if scoreType < 1 {
		return fmt.Errorf("BIWENGER_SCORE_TYPE must be >= 1")
	}
	cfg.BiwengerScoreType = scoreType

	timeout, err := time.ParseDuration(getEnv("BIWENGER_TIMEOUT", "20s"))
	if err != nil {
		return fmt.Errorf("parse BIWENGER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("BIWENGER_TIMEOUT must be > 0")
	}
	cfg.BiwengerTimeout = timeout

	maxRetries, err := getEnvAsInt("BIWENGER_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("BIWENGER_MAX_RETRIES must be >= 0")
	}
	cfg.BiwengerMaxRetries = maxRetries

	circuitEnabled, err := strconv.ParseBool(getEnv("BIWENGER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse BIWENGER_CIRCUIT_ENABLED: %w", err)
	}
	cfg.BiwengerCircuitEnabled = circuitEnabled

	failureCount, err := getEnvAsInt("BIWENGER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if failureCount < 1 {
		return fmt.Errorf("BIWENGER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.BiwengerCircuitFailureCount = failureCount

	openTimeout, err := time.ParseDuration(getEnv("BIWENGER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse BIWENGER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openTimeout <= 0 {
		return fmt.Errorf("BIWENGER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.BiwengerCircuitOpenTimeout = openTimeout

	halfOpen, err := getEnvAsInt("BIWENGER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return fmt.Errorf("parse BIWENGER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if halfOpen < 1 {
		return fmt.Errorf("BIWENGER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.BiwengerCircuitHalfOpenReq = halfOpen

	return nil
}

func loadComuniate(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("COMUNIATE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse COMUNIATE_ENABLED: %w", err)
	}
	cfg.ComuniateEnabled = enabled
	cfg.ComuniateBaseURL = strings.TrimSpace(getEnv("COMUNIATE_BASE_URL", "https://www.comuniate.com"))
	cfg.ComuniateMode = strings.TrimSpace(getEnv("COMUNIATE_MODE", "clasico"))

	poolSize, err := getEnvAsInt("COMUNIATE_POOL_SIZE", 4)
	if err != nil {
		return fmt.Errorf("parse COMUNIATE_POOL_SIZE: %w", err)
	}
	if poolSize < 1 {
		return fmt.Errorf("COMUNIATE_POOL_SIZE must be >= 1")
	}
	cfg.ComuniatePoolSize = poolSize

	timeout, err := time.ParseDuration(getEnv("COMUNIATE_TIMEOUT", "20s"))
	if err != nil {
		return fmt.Errorf("parse COMUNIATE_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("COMUNIATE_TIMEOUT must be > 0")
	}
	cfg.ComuniateTimeout = timeout

	maxRetries, err := getEnvAsInt("COMUNIATE_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse COMUNIATE_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("COMUNIATE_MAX_RETRIES must be >= 0")
	}
	cfg.ComuniateMaxRetries = maxRetries

	return nil
}

func loadOdds(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("ODDS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse ODDS_ENABLED: %w", err)
	}
	cfg.OddsEnabled = enabled
	cfg.OddsBaseURL = strings.TrimSpace(getEnv("ODDS_BASE_URL", "https://www.euroclubindex.com"))

	leagueID, err := getEnvAsInt("ODDS_LEAGUE_ID", 67)
	if err != nil {
		return fmt.Errorf("parse ODDS_LEAGUE_ID: %w", err)
	}
	if leagueID < 1 {
		return fmt.Errorf("ODDS_LEAGUE_ID must be >= 1")
	}
	cfg.OddsLeagueID = leagueID

	timeout, err := time.ParseDuration(getEnv("ODDS_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse ODDS_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("ODDS_TIMEOUT must be > 0")
	}
	cfg.OddsTimeout = timeout

	maxRetries, err := getEnvAsInt("ODDS_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse ODDS_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("ODDS_MAX_RETRIES must be >= 0")
	}
	cfg.OddsMaxRetries = maxRetries

	return nil
}

func loadNews(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("NEWS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse NEWS_ENABLED: %w", err)
	}
	cfg.NewsEnabled = enabled
	cfg.NewsFeedURL = strings.TrimSpace(getEnv("NEWS_FEED_URL", "https://www.jornadaperfecta.com/feed/"))

	timeout, err := time.ParseDuration(getEnv("NEWS_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse NEWS_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("NEWS_TIMEOUT must be > 0")
	}
	cfg.NewsTimeout = timeout

	maxItems, err := getEnvAsInt("NEWS_MAX_ITEMS", 10)
	if err != nil {
		return fmt.Errorf("parse NEWS_MAX_ITEMS: %w", err)
	}
	if maxItems < 1 {
		return fmt.Errorf("NEWS_MAX_ITEMS must be >= 1")
	}
	cfg.NewsMaxItems = maxItems

	return nil
}

func loadReportWebhook(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("REPORT_WEBHOOK_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse REPORT_WEBHOOK_ENABLED: %w", err)
	}
	cfg.ReportWebhookEnabled = enabled
	cfg.ReportWebhookTargetURL = strings.TrimSpace(getEnv("REPORT_WEBHOOK_TARGET_URL", ""))
	cfg.ReportWebhookToken = strings.TrimSpace(getEnv("REPORT_WEBHOOK_TOKEN", ""))
	if cfg.ReportWebhookEnabled && cfg.ReportWebhookTargetURL == "" {
		return fmt.Errorf("REPORT_WEBHOOK_TARGET_URL is required when REPORT_WEBHOOK_ENABLED=true")
	}

	timeout, err := time.ParseDuration(getEnv("REPORT_WEBHOOK_TIMEOUT", "10s"))
	if err != nil {
		return fmt.Errorf("parse REPORT_WEBHOOK_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("REPORT_WEBHOOK_TIMEOUT must be > 0")
	}
	cfg.ReportWebhookTimeout = timeout

	maxRetries, err := getEnvAsInt("REPORT_WEBHOOK_MAX_RETRIES", 3)
	if err != nil {
		return fmt.Errorf("parse REPORT_WEBHOOK_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("REPORT_WEBHOOK_MAX_RETRIES must be >= 0")
	}
	cfg.ReportWebhookMaxRetries = maxRetries

	circuitEnabled, err := strconv.ParseBool(getEnv("REPORT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse REPORT_CIRCUIT_ENABLED: %w", err)
	}
	cfg.ReportCircuitEnabled = circuitEnabled

	failureCount, err := getEnvAsInt("REPORT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse REPORT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if failureCount < 1 {
		return fmt.Errorf("REPORT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.ReportCircuitFailureCount = failureCount

	openTimeout, err := time.ParseDuration(getEnv("REPORT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse REPORT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openTimeout <= 0 {
		return fmt.Errorf("REPORT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.ReportCircuitOpenTimeout = openTimeout

	halfOpen, err := getEnvAsInt("REPORT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return fmt.Errorf("parse REPORT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if halfOpen < 1 {
		return fmt.Errorf("REPORT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.ReportCircuitHalfOpenReq = halfOpen

	return nil
}

func loadObservability(cfg *Config) error {
	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	uploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if uploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	cfg.PyroscopeUploadRate = uploadRate

	return nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/models"
)

// DefaultSyncSchedule is the cron spec of the block synchronization job
const DefaultSyncSchedule = "@every 6s"

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	// Owner is the address of the legal officer running this node
	Owner      string
	OwnerEmail string
	JWTSecret  string

	// OwnerPasswordHash is the bcrypt hash of the owner's basic auth password
	OwnerPasswordHash string

	SidecarURL   string
	SyncSchedule string
	SyncEnabled  bool

	SendgridAPIKey string
	MailFrom       string
	Templates      map[string]string
}

// notificationTemplates maps notification names to the env var holding
// their sendgrid dynamic template id
var notificationTemplates = map[string]string{
	"protection-requested": "TEMPLATE_PROTECTION_REQUESTED",
	"protection-accepted":  "TEMPLATE_PROTECTION_ACCEPTED",
	"protection-rejected":  "TEMPLATE_PROTECTION_REJECTED",
	"recovery-requested":   "TEMPLATE_RECOVERY_REQUESTED",
	"recovery-accepted":    "TEMPLATE_RECOVERY_ACCEPTED",
	"recovery-rejected":    "TEMPLATE_RECOVERY_REJECTED",
}

// New sets up all config related services
func New() *Config {
	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	templates := map[string]string{}
	for name, key := range notificationTemplates {
		if id := os.Getenv(key); id != "" {
			templates[name] = id
		}
	}

	return &Config{
		URL:               os.Getenv("DB_URI"),
		DatabaseName:      os.Getenv("DB_NAME"),
		BaseURL:           os.Getenv("BASE_URL"),
		Port:              os.Getenv("PORT"),
		Env:               env,
		Owner:             os.Getenv("OWNER"),
		OwnerEmail:        os.Getenv("OWNER_EMAIL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		OwnerPasswordHash: os.Getenv("OWNER_PASSWORD_HASH"),
		SidecarURL:        os.Getenv("SIDECAR_URL"),
		SyncSchedule:      getEnv("SYNC_SCHEDULE", DefaultSyncSchedule),
		SyncEnabled:       getBool("SYNC_ENABLED", true),
		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		MailFrom:          os.Getenv("MAIL_FROM"),
		Templates:         templates,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

// setLogger builds the zap logger matching the running environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		return zap.NewDevelopment()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorMessageResponse{
		Response: models.MessageError{
			Message: message,
			Error:   errText,
		},
	})
}

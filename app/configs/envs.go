package configs

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ENV struct {
	AppName string
	AppEnv  string
	AppPort string
	AppURL  string

	LogLevel string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AppAuthKey  string
	AppEncKey   string
	CSRFKey     string
	CSRFEnabled bool

	JWTSecret   string
	JWTTTLHours int

	EmailHost     string
	EmailPort     string
	EmailUsername string
	EmailPassword string
	EmailFrom     string

	MidtransServerKey string
	MidtransClientKey string
	MidtransEnv       string

	InvitationTTLHours         int
	VerificationCodeTTLMinutes int
}

// LoadEnv reads .env when present and falls back to the process environment.
// The returned bool reports whether a .env file was found.
func LoadEnv() (ENV, bool) {
	found := godotenv.Load(".env") == nil

	env := ENV{
		AppName: getEnv("APP_NAME", "Fashion Boutique"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		AppURL:  strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "boutique"),
		DBPort:     os.Getenv("DB_PORT"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppAuthKey:  os.Getenv("APP_AUTH_KEY"),
		AppEncKey:   os.Getenv("APP_ENC_KEY"),
		CSRFKey:     os.Getenv("CSRF_KEY"),
		CSRFEnabled: getEnvBool("CSRF_ENABLED", false),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		EmailHost:     os.Getenv("EMAIL_HOST"),
		EmailPort:     getEnv("EMAIL_PORT", "587"),
		EmailUsername: os.Getenv("EMAIL_USERNAME"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:     getEnv("EMAIL_FROM", os.Getenv("EMAIL_USERNAME")),

		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransEnv:       getEnv("MIDTRANS_ENV", "sandbox"),

		InvitationTTLHours:         getEnvInt("INVITATION_TTL_HOURS", 24*7),
		VerificationCodeTTLMinutes: getEnvInt("VERIFICATION_CODE_TTL_MINUTES", 10),
	}

	if env.DBPort == "" {
		if env.DBDriver == "postgres" {
			env.DBPort = "5432"
		} else {
			env.DBPort = "3306"
		}
	}

	return env, found
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

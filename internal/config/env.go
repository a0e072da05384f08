package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	// TxTimeout bounds every mutating transaction (seconds, not minutes).
	TxTimeout time.Duration

	// AuditSpec is the cron expression for the consistency audit job.
	AuditSpec string
}

func LoadEnv() Env {
	// .env is optional; deployments may set variables directly.
	_ = godotenv.Load()

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	dbUser := strings.TrimSpace(os.Getenv("DB_USER"))
	if dbUser == "" {
		dbUser = "root"
	}
	dbHost := strings.TrimSpace(os.Getenv("DB_HOST"))
	if dbHost == "" {
		dbHost = "127.0.0.1:3306"
	}
	dbName := strings.TrimSpace(os.Getenv("DB_NAME"))
	if dbName == "" {
		dbName = "gibravotravel"
	}

	txTimeout := 5 * time.Second
	if raw := strings.TrimSpace(os.Getenv("TX_TIMEOUT_SECONDS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			txTimeout = time.Duration(n) * time.Second
		}
	}

	auditSpec := strings.TrimSpace(os.Getenv("AUDIT_CRON"))
	if auditSpec == "" {
		auditSpec = "*/15 * * * *"
	}

	return Env{
		AppAddr:   appAddr,
		GinMode:   ginMode,
		DBUser:    dbUser,
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    dbHost,
		DBName:    dbName,
		TxTimeout: txTimeout,
		AuditSpec: auditSpec,
	}
}

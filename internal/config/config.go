package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string // dev | prod

	DBDriver string // mysql | postgres | sqlite

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresHost string
	PostgresPort string
	PostgresDB   string
	PostgresUser string
	PostgresPass string

	SQLitePath string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret     string
	JWTTTLMinutes int
	AuthDevBypass bool

	BlobBackend  string // s3 | local
	BlobLocalDir string
	S3Bucket     string
	AWSRegion    string
	AWSEndpoint  string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment. envFiles are loaded first when present; real
// environment variables always win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c := &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  strings.ToLower(getenv("APP_ENV", "dev")),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "mysql")),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "claims"),
		MySQLUser: getenv("MYSQL_USER", "claims"),
		MySQLPass: getenv("MYSQL_PASS", "claims"),

		PostgresHost: getenv("POSTGRES_HOST", "postgres"),
		PostgresPort: getenv("POSTGRES_PORT", "5432"),
		PostgresDB:   getenv("POSTGRES_DB", "claims"),
		PostgresUser: getenv("POSTGRES_USER", "claims"),
		PostgresPass: getenv("POSTGRES_PASS", "claims"),

		SQLitePath: getenv("SQLITE_PATH", "claims.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getenvInt("JWT_TTL_MINUTES", 60),
		AuthDevBypass: getenvBool("AUTH_DEV_BYPASS", false),

		BlobBackend:  strings.ToLower(getenv("BLOB_BACKEND", "local")),
		BlobLocalDir: getenv("BLOB_LOCAL_DIR", "uploads"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		AWSRegion:    getenv("AWS_REGION", "us-east-1"),
		AWSEndpoint:  os.Getenv("AWS_ENDPOINT_URL"),
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			return errors.New("missing Postgres config (POSTGRES_HOST/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PostgresPort); err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.PostgresPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", c.DBDriver)
	}
	if len(c.JWTSecret) < 16 && !c.AuthDevBypass {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	switch c.BlobBackend {
	case "local":
		if c.BlobLocalDir == "" {
			return errors.New("missing BLOB_LOCAL_DIR")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("missing S3_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q (want local or s3)", c.BlobBackend)
	}
	if c.AuthDevBypass && c.IsProd() {
		return errors.New("AUTH_DEV_BYPASS cannot be enabled with APP_ENV=prod")
	}
	return nil
}

func (c *Config) IsProd() bool { return c.AppEnv == "prod" || c.AppEnv == "production" }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) JWTTTL() time.Duration { return time.Duration(c.JWTTTLMinutes) * time.Minute }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN()
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs        int
	SideEffectTimeoutMS int

	AgreementBaseURL string

	// Lending policy knobs; read once at startup.
	MaxDTIPercent      float64
	AbsoluteMaxLoan    float64
	HighValueThreshold float64
	GuarantorMaxActive int64
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

func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "microfin"),
		MySQLUser: getenv("MYSQL_USER", "microfin"),
		MySQLPass: getenv("MYSQL_PASS", "microfin"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs:        getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		SideEffectTimeoutMS: getenvInt("SIDE_EFFECT_TIMEOUT_MS", 3000),

		AgreementBaseURL: getenv("AGREEMENT_BASE_URL", "https://agreements.internal"),

		MaxDTIPercent:      getenvFloat("MAX_DTI_PERCENT", 40),
		AbsoluteMaxLoan:    getenvFloat("ABSOLUTE_MAX_LOAN", 1_000_000),
		HighValueThreshold: getenvFloat("HIGH_VALUE_THRESHOLD", 500_000),
		GuarantorMaxActive: int64(getenvInt("GUARANTOR_MAX_ACTIVE", 3)),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MaxDTIPercent <= 0 || c.MaxDTIPercent > 100 {
		return fmt.Errorf("MAX_DTI_PERCENT out of range: %v", c.MaxDTIPercent)
	}
	if c.HighValueThreshold > c.AbsoluteMaxLoan {
		return errors.New("HIGH_VALUE_THRESHOLD exceeds ABSOLUTE_MAX_LOAN")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

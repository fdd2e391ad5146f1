package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "MYSQL_HOST", "REDIS_ADDR", "MAX_DTI_PERCENT", "HIGH_VALUE_THRESHOLD"} {
		t.Setenv(k, "")
	}
	c := Load()

	if c.AppPort != "8080" {
		t.Errorf("AppPort = %s", c.AppPort)
	}
	if c.MaxDTIPercent != 40 || c.HighValueThreshold != 500_000 {
		t.Errorf("policy defaults = %v / %v", c.MaxDTIPercent, c.HighValueThreshold)
	}
	if c.GuarantorMaxActive != 3 {
		t.Errorf("GuarantorMaxActive = %d", c.GuarantorMaxActive)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("MAX_DTI_PERCENT", "35.5")
	t.Setenv("GUARANTOR_MAX_ACTIVE", "5")
	c := Load()

	if c.AppPort != "9000" {
		t.Errorf("AppPort = %s", c.AppPort)
	}
	if c.MaxDTIPercent != 35.5 {
		t.Errorf("MaxDTIPercent = %v", c.MaxDTIPercent)
	}
	if c.GuarantorMaxActive != 5 {
		t.Errorf("GuarantorMaxActive = %d", c.GuarantorMaxActive)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := Load()
		return c
	}

	c := base()
	c.MySQLHost = ""
	if err := c.Validate(); err == nil {
		t.Error("missing mysql host accepted")
	}

	c = base()
	c.MySQLPort = "not-a-port"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "MYSQL_PORT") {
		t.Errorf("bad port: %v", err)
	}

	c = base()
	c.MaxDTIPercent = 0
	if err := c.Validate(); err == nil {
		t.Error("zero DTI cap accepted")
	}

	c = base()
	c.HighValueThreshold = c.AbsoluteMaxLoan + 1
	if err := c.Validate(); err == nil {
		t.Error("threshold above absolute max accepted")
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLHost: "db", MySQLPort: "3306", MySQLDB: "microfin", MySQLUser: "u", MySQLPass: "p"}
	dsn := c.MySQLDSN()
	if !strings.HasPrefix(dsn, "u:p@tcp(db:3306)/microfin?") {
		t.Fatalf("dsn = %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn missing parseTime: %s", dsn)
	}
}

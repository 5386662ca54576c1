package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Server   ServerConfig
	Payroll  PayrollConfig
	Leave    LeaveConfig
}

type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxRetries int
}

// DSN dipakai oleh koneksi gorm maupun runner migrasi
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// URL adalah bentuk postgres:// untuk pgxpool
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker  string
	GroupID string
}

type JWTConfig struct {
	Secret string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PayrollConfig holds the statutory constants of the salary formula.
type PayrollConfig struct {
	StandardAllowance decimal.Decimal
	ProfessionalTax   decimal.Decimal
}

type LeaveConfig struct {
	PaidLeaveTotal int
	SickLeaveTotal int
}

func Load() (*Config, error) {
	// .env opsional, env var asli tetap menang
	_ = godotenv.Load()

	cfg := &Config{}

	dbRetries, err := strconv.Atoi(getEnv("DB_MAX_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_RETRIES: %w", err)
	}
	cfg.Database = DatabaseConfig{
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       getEnv("DB_PORT", "5432"),
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "dayflow"),
		SSLMode:    getEnv("DB_SSLMODE", "disable"),
		MaxRetries: dbRetries,
	}

	cfg.Redis = RedisConfig{
		Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MaxRetries: 5,
	}

	cfg.Kafka = KafkaConfig{
		Broker:  getEnv("KAFKA_BROKER", ""),
		GroupID: getEnv("KAFKA_GROUP_ID", "dayflow-hris-leave-balance"),
	}

	cfg.JWT = JWTConfig{Secret: getEnv("JWT_SECRET", "")}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_WRITE_TIMEOUT: %w", err)
	}
	idleTimeout, err := time.ParseDuration(getEnv("HTTP_IDLE_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.Server = ServerConfig{
		Port:         getEnv("PORT", "3000"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	stdAllowance, err := decimal.NewFromString(getEnv("PAYROLL_STANDARD_ALLOWANCE", "4167"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STANDARD_ALLOWANCE: %w", err)
	}
	professionalTax, err := decimal.NewFromString(getEnv("PAYROLL_PROFESSIONAL_TAX", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_PROFESSIONAL_TAX: %w", err)
	}
	cfg.Payroll = PayrollConfig{
		StandardAllowance: stdAllowance,
		ProfessionalTax:   professionalTax,
	}

	paidTotal, err := strconv.Atoi(getEnv("LEAVE_PAID_TOTAL", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_PAID_TOTAL: %w", err)
	}
	sickTotal, err := strconv.Atoi(getEnv("LEAVE_SICK_TOTAL", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_SICK_TOTAL: %w", err)
	}
	cfg.Leave = LeaveConfig{PaidLeaveTotal: paidTotal, SickLeaveTotal: sickTotal}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	TOTP         TOTPConfig         `mapstructure:"totp"`
	Session      SessionConfig      `mapstructure:"session"`
	Rotation     RotationConfig     `mapstructure:"rotation"`
	Liveness     LivenessConfig     `mapstructure:"liveness"`
	FaceMatch    FaceMatchConfig    `mapstructure:"face_match"`
	Snapshots    SnapshotConfig     `mapstructure:"snapshots"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	AccessTokenExpiry string `mapstructure:"access_token_expiry"`
}

type TOTPConfig struct {
	Issuer string `mapstructure:"issuer"`
	Period uint   `mapstructure:"period"`
	Digits uint   `mapstructure:"digits"`
}

// SessionConfig carries the timing rules of the attendance protocol.
type SessionConfig struct {
	// PINValidity is how long a THEORY PIN is accepted, measured from
	// session start (not from the last rotation).
	PINValidity string `mapstructure:"pin_validity"`
	// LabWindowMillis is the rotation window of derived LAB QR tokens.
	LabWindowMillis int64 `mapstructure:"lab_window_millis"`
	// SkewWindows is how many past windows the verifier accepts to
	// absorb client clock drift.
	SkewWindows int `mapstructure:"skew_windows"`
	// LabSecretLength is the character length of LAB session secrets.
	LabSecretLength int `mapstructure:"lab_secret_length"`
}

type RotationConfig struct {
	// Interval between scheduler passes over active THEORY sessions.
	Interval string `mapstructure:"interval"`
}

type LivenessConfig struct {
	EARThreshold    float64 `mapstructure:"ear_threshold"`
	MinClosedFrames int     `mapstructure:"min_closed_frames"`
	SampleInterval  string  `mapstructure:"sample_interval"`
}

type FaceMatchConfig struct {
	// Threshold is the maximum Euclidean distance accepted as the same
	// identity. 0.5 is deliberately tighter than the 0.6 heuristic from
	// the face-embedding literature since this gates access.
	Threshold float64 `mapstructure:"threshold"`
}

type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

type CloudStorageConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Provider         string `mapstructure:"provider"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	PublicContainer  string `mapstructure:"public_container"`
	PrivateContainer string `mapstructure:"private_container"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           string   `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.port", port)
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPass := os.Getenv("DB_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}

	if enabled := os.Getenv("CLOUD_STORAGE_ENABLED"); enabled != "" {
		cfg.CloudStorage.Enabled = enabled == "true"
	}
	if accessKey := os.Getenv("CLOUD_STORAGE_ACCESS_KEY"); accessKey != "" {
		cfg.CloudStorage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("CLOUD_STORAGE_SECRET_KEY"); secretKey != "" {
		cfg.CloudStorage.SecretKey = secretKey
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session.pin_validity", "5m")
	v.SetDefault("session.lab_window_millis", 15000)
	v.SetDefault("session.skew_windows", 1)
	v.SetDefault("session.lab_secret_length", 32)
	v.SetDefault("rotation.interval", "5m")
	v.SetDefault("liveness.ear_threshold", 0.25)
	v.SetDefault("liveness.min_closed_frames", 2)
	v.SetDefault("liveness.sample_interval", "200ms")
	v.SetDefault("face_match.threshold", 0.5)
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// GetURL returns the connection URL used by golang-migrate
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Helper methods to parse duration strings
func (c *JWTConfig) GetAccessTokenExpiry() (time.Duration, error) {
	return parseDuration(c.AccessTokenExpiry)
}

func (c *SessionConfig) GetPINValidity() (time.Duration, error) {
	return parseDuration(c.PINValidity)
}

func (c *RotationConfig) GetInterval() (time.Duration, error) {
	return parseDuration(c.Interval)
}

func (c *LivenessConfig) GetSampleInterval() (time.Duration, error) {
	return parseDuration(c.SampleInterval)
}

func (c *ServerConfig) GetReadTimeout() (time.Duration, error) {
	return parseDuration(c.ReadTimeout)
}

func (c *ServerConfig) GetWriteTimeout() (time.Duration, error) {
	return parseDuration(c.WriteTimeout)
}

func (c *ServerConfig) GetShutdownTimeout() (time.Duration, error) {
	return parseDuration(c.ShutdownTimeout)
}

func (c *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	return parseDuration(c.ConnMaxLifetime)
}

func (c *CORSConfig) GetMaxAge() (time.Duration, error) {
	return parseDuration(c.MaxAge)
}

// parseDuration parses duration strings like "7d", "24h", "30m"
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	// Handle days (e.g., "7d")
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		_, err := fmt.Sscanf(days, "%d", &d)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %s", s)
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "aar.cfg.json"

// ResolverConfig holds the chain matching policy.
type ResolverConfig struct {
	WindowAA            time.Duration `json:"windowAA" mapstructure:"windowAA"`
	WindowAG            time.Duration `json:"windowAG" mapstructure:"windowAG"`
	WindowUnknown       time.Duration `json:"windowUnknown" mapstructure:"windowUnknown"`
	RemovalGrace        time.Duration `json:"removalGrace" mapstructure:"removalGrace"`
	SplashWindow        time.Duration `json:"splashWindow" mapstructure:"splashWindow"`
	SplashRadius        float64       `json:"splashRadius" mapstructure:"splashRadius"`
	KillTolerance       time.Duration `json:"killTolerance" mapstructure:"killTolerance"`
	KillLinkWindow      time.Duration `json:"killLinkWindow" mapstructure:"killLinkWindow"`
	BucketWidth         time.Duration `json:"bucketWidth" mapstructure:"bucketWidth"`
	Workers             int           `json:"workers" mapstructure:"workers"`
	ClassificationTable string        `json:"classificationTable" mapstructure:"classificationTable"`
}

// OutputConfig holds report export settings
type OutputConfig struct {
	Dir      string `json:"dir" mapstructure:"dir"`
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// InfluxConfig holds InfluxDB metrics sink settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
	Backup   string `json:"backup" mapstructure:"backup"`
}

// URL returns the server URL built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig holds OpenTelemetry log export settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig holds GELF log shipping settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./aarlogs")

	viper.SetDefault("resolver.windowAA", "60s")
	viper.SetDefault("resolver.windowAG", "120s")
	viper.SetDefault("resolver.windowUnknown", "60s")
	viper.SetDefault("resolver.removalGrace", "1s")
	viper.SetDefault("resolver.splashWindow", "2s")
	viper.SetDefault("resolver.splashRadius", 150.0)
	viper.SetDefault("resolver.killTolerance", "250ms")
	viper.SetDefault("resolver.killLinkWindow", "0s")
	viper.SetDefault("resolver.bucketWidth", "10s")
	viper.SetDefault("resolver.workers", 0)
	viper.SetDefault("resolver.classificationTable", "")

	viper.SetDefault("output.dir", "./reports")
	viper.SetDefault("output.compress", false)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "ocap-metrics")
	viper.SetDefault("influx.bucket", "aar")
	viper.SetDefault("influx.backup", "influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "aar")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from the JSON file in configDir and sets default values.
// A missing config file is not an error. Values from a .env file in configDir
// and AAR_* environment variables override the file.
func Load(configDir string) error {
	setDefaults()

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	viper.SetEnvPrefix("AAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetResolverConfig returns the resolver section.
func GetResolverConfig() ResolverConfig {
	return ResolverConfig{
		WindowAA:            viper.GetDuration("resolver.windowAA"),
		WindowAG:            viper.GetDuration("resolver.windowAG"),
		WindowUnknown:       viper.GetDuration("resolver.windowUnknown"),
		RemovalGrace:        viper.GetDuration("resolver.removalGrace"),
		SplashWindow:        viper.GetDuration("resolver.splashWindow"),
		SplashRadius:        viper.GetFloat64("resolver.splashRadius"),
		KillTolerance:       viper.GetDuration("resolver.killTolerance"),
		KillLinkWindow:      viper.GetDuration("resolver.killLinkWindow"),
		BucketWidth:         viper.GetDuration("resolver.bucketWidth"),
		Workers:             viper.GetInt("resolver.workers"),
		ClassificationTable: viper.GetString("resolver.classificationTable"),
	}
}

// GetOutputConfig returns the output section.
func GetOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:      viper.GetString("output.dir"),
		Compress: viper.GetBool("output.compress"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
		Backup:   viper.GetString("influx.backup"),
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the graylog section.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

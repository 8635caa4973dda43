package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// SysConfig system level configuration
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// DBConfig database configuration, type is one of postgres / sqlite
type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

// LoggerConfig zap logger configuration
type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// ProviderConfig remote messaging provider endpoint and credential.
// Token is the provider-side credential and is never the operator API key.
type ProviderConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	Token     string        `yaml:"token" json:"token"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	SweepCron string        `yaml:"sweep_cron" json:"sweep_cron"`
}

// WebhookConfig inbound provider callback authentication
type WebhookConfig struct {
	Secret string `yaml:"secret" json:"secret"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Database DBConfig       `yaml:"database" json:"database"`
	Logger   LoggerConfig   `yaml:"logger" json:"logger"`
	Provider ProviderConfig `yaml:"provider" json:"provider"`
	Webhook  WebhookConfig  `yaml:"webhook" json:"webhook"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "warelay",
		Location: "Asia/Shanghai",
		Workdir:  "/var/warelay",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1889,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "warelay",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/warelay/warelay.log",
	},
	Provider: ProviderConfig{
		Timeout: 30 * time.Second,
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue == "true" || evalue == "1" || evalue == "on")
	}
}

func setEnvIntValue(name string, f func(v int)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := strconv.Atoi(evalue)
	if err == nil {
		f(p)
	}
}

// LoadConfig loads the YAML configuration from cfile, falling back to
// defaults, then applies WARELAY_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("WARELAY_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("WARELAY_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("WARELAY_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("WARELAY_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("WARELAY_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("WARELAY_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("WARELAY_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("WARELAY_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("WARELAY_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("WARELAY_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("WARELAY_PROVIDER_BASE_URL", func(v string) { cfg.Provider.BaseURL = v })
	setEnvValue("WARELAY_PROVIDER_TOKEN", func(v string) { cfg.Provider.Token = v })
	setEnvValue("WARELAY_WEBHOOK_SECRET", func(v string) { cfg.Webhook.Secret = v })
	return cfg
}

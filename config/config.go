package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

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

type SmtpConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	User    string `yaml:"user" json:"user"`
	Passwd  string `yaml:"passwd" json:"passwd"`
	From    string `yaml:"from" json:"from"`
	AdminTo string `yaml:"admin_to" json:"admin_to"`
}

// StoreConfig holds storefront branding and checkout handoff settings.
type StoreConfig struct {
	Name           string `yaml:"name" json:"name"`
	SiteURL        string `yaml:"site_url" json:"site_url"`
	Currency       string `yaml:"currency" json:"currency"`
	WhatsAppNumber string `yaml:"whatsapp_number" json:"whatsapp_number"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Smtp     SmtpConfig  `yaml:"smtp" json:"smtp"`
	Store    StoreConfig `yaml:"store" json:"store"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "SakuraEssence",
		Location: "Africa/Casablanca",
		Workdir:  "/var/sakuraessence",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1889,
		Secret: "9b6de5cc-0737-1189-e6hf-d80e3b41d688",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "sakuraessence",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Smtp: SmtpConfig{
		Host:    "smtp.office365.com",
		Port:    587,
		User:    "",
		Passwd:  "",
		From:    "",
		AdminTo: "",
	},
	Store: StoreConfig{
		Name:           "Sakura Essence",
		SiteURL:        "https://sakuraessence.com",
		Currency:       "MAD",
		WhatsAppNumber: "34742083046",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/sakuraessence/sakuraessence.log",
	},
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetUploadDir() string {
	return filepath.Join(c.System.Workdir, "uploads")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
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

// LoadConfig loads the YAML configuration file when it exists and then applies
// SAKURA_* environment overrides on top.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err == nil {
				cfg = new(AppConfig)
				if err := yaml.Unmarshal(data, cfg); err != nil {
					panic(err)
				}
			}
		}
	}

	setEnvValue("SAKURA_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("SAKURA_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })

	setEnvValue("SAKURA_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("SAKURA_WEB_SECRET", func(v string) { cfg.Web.Secret = v })

	setEnvValue("SAKURA_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("SAKURA_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("SAKURA_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("SAKURA_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("SAKURA_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	setEnvValue("SAKURA_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvValue("SAKURA_SMTP_USER", func(v string) { cfg.Smtp.User = v })
	setEnvValue("SAKURA_SMTP_PWD", func(v string) { cfg.Smtp.Passwd = v })
	setEnvValue("SAKURA_SMTP_FROM", func(v string) { cfg.Smtp.From = v })
	setEnvValue("SAKURA_SMTP_ADMIN_TO", func(v string) { cfg.Smtp.AdminTo = v })

	setEnvValue("SAKURA_STORE_WHATSAPP", func(v string) { cfg.Store.WhatsAppNumber = v })

	return cfg
}

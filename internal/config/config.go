// Package config 配置加载与保存
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// JournalConfig 期刊标识配置
type JournalConfig struct {
	Name       string `mapstructure:"name"`
	ISSN       string `mapstructure:"issn"`
	DOI        string `mapstructure:"doi"`
	Volume     string `mapstructure:"volume"`
	FooterText string `mapstructure:"footer_text"`
}

// GroqConfig 结构分析接入配置
type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // 请求超时时间（秒）
}

// Config 保存格式化器的所有配置
type Config struct {
	Journal           JournalConfig `mapstructure:"journal"`
	Groq              GroqConfig    `mapstructure:"groq"`
	RasterizerTimeout int           `mapstructure:"rasterizer_timeout"` // PDF 渲染超时时间（秒）
	OutputDir         string        `mapstructure:"output_dir"`
	AttachReport      bool          `mapstructure:"attach_report"` // 导出时附带格式检查报告
	Debug             bool          `mapstructure:"debug"`
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果配置路径已指定，则直接使用
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		// 添加可能的配置文件路径
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.SetConfigName(".paperfmt")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvPrefix("PAPERFMT")
	v.BindEnv("groq.api_key", "GROQ_API_KEY")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig 将配置保存到文件
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".paperfmt.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("journal", map[string]interface{}{
		"name":        config.Journal.Name,
		"issn":        config.Journal.ISSN,
		"doi":         config.Journal.DOI,
		"volume":      config.Journal.Volume,
		"footer_text": config.Journal.FooterText,
	})
	v.Set("groq", map[string]interface{}{
		"api_key":     config.Groq.APIKey,
		"base_url":    config.Groq.BaseURL,
		"model":       config.Groq.Model,
		"temperature": config.Groq.Temperature,
		"timeout":     config.Groq.Timeout,
	})
	v.Set("rasterizer_timeout", config.RasterizerTimeout)
	v.Set("output_dir", config.OutputDir)
	v.Set("attach_report", config.AttachReport)
	v.Set("debug", config.Debug)

	// 创建父目录（如果不存在）
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return v.WriteConfig()
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Journal: JournalConfig{
			Name:       "INTERNATIONAL JOURNAL OF RESEARCH AND INNOVATION IN SOCIAL SCIENCE (IJRISS)",
			ISSN:       "ISSN No. 2454-6186",
			DOI:        "DOI: 10.47772/IJRISS",
			Volume:     "Volume IX Issue VIII August 2025",
			FooterText: "www.rsisinternational.org",
		},
		Groq: GroqConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama3-70b-8192",
			Temperature: 0.1,
			Timeout:     30,
		},
		RasterizerTimeout: 60,
		OutputDir:         ".",
		AttachReport:      false,
		Debug:             false,
	}
}

func setDefaults(v *viper.Viper) {
	defaults := NewDefaultConfig()
	v.SetDefault("journal.name", defaults.Journal.Name)
	v.SetDefault("journal.issn", defaults.Journal.ISSN)
	v.SetDefault("journal.doi", defaults.Journal.DOI)
	v.SetDefault("journal.volume", defaults.Journal.Volume)
	v.SetDefault("journal.footer_text", defaults.Journal.FooterText)
	v.SetDefault("groq.base_url", defaults.Groq.BaseURL)
	v.SetDefault("groq.model", defaults.Groq.Model)
	v.SetDefault("groq.temperature", defaults.Groq.Temperature)
	v.SetDefault("groq.timeout", defaults.Groq.Timeout)
	v.SetDefault("rasterizer_timeout", defaults.RasterizerTimeout)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("attach_report", defaults.AttachReport)
	v.SetDefault("debug", defaults.Debug)
}

// Identity 期刊标识配置项不完整时回退到默认值
func (c *Config) Identity() JournalConfig {
	defaults := NewDefaultConfig().Journal
	identity := c.Journal
	if identity.Name == "" {
		identity.Name = defaults.Name
	}
	if identity.ISSN == "" {
		identity.ISSN = defaults.ISSN
	}
	if identity.DOI == "" {
		identity.DOI = defaults.DOI
	}
	if identity.Volume == "" {
		identity.Volume = defaults.Volume
	}
	if identity.FooterText == "" {
		identity.FooterText = defaults.FooterText
	}
	return identity
}

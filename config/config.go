package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 BLINDSIGHT_SMS_AUTH_TOKEN
const EnvPrefix = "BLINDSIGHT"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Detection DetectionConfig `mapstructure:"detection"`
	Face      FaceConfig      `mapstructure:"face"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	SMS       SMSConfig       `mapstructure:"sms"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	// MaxSize 解码后图片的最大字节数
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"` // multipart 上传允许的类型
}

// DetectionConfig 路况辅助（目标检测）配置
type DetectionConfig struct {
	Backend        string        `mapstructure:"backend"` // dnn 或 remote
	ModelPath      string        `mapstructure:"model_path"`
	ConfigPath     string        `mapstructure:"config_path"`
	InferenceURL   string        `mapstructure:"inference_url"`
	HealthURL      string        `mapstructure:"health_url"` // 为空时与 inference_url 同目录的 /health
	FrameSize      int           `mapstructure:"frame_size"`
	MinConfidence  float64       `mapstructure:"min_confidence"`
	MinArea        float64       `mapstructure:"min_area"`
	AllowList      []string      `mapstructure:"allow_list"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	QueueTimeout   time.Duration `mapstructure:"queue_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type FaceConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	ModelDir   string  `mapstructure:"model_dir"`
	SamplesDir string  `mapstructure:"samples_dir"`
	Tolerance  float32 `mapstructure:"tolerance"`
}

type CurrencyConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	ModelPath     string   `mapstructure:"model_path"`
	InputSize     int      `mapstructure:"input_size"`
	MinConfidence float64  `mapstructure:"min_confidence"`
	Labels        []string `mapstructure:"labels"` // 下标即模型输出的类别号
}

type SMSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
}

// DefaultAllowList 路况描述关心的目标类别
var DefaultAllowList = []string{
	"car", "person", "bicycle", "motorcycle", "bus", "truck",
	"traffic light", "fire hydrant", "stop sign", "cat", "dog", "horse", "cow",
}

// DefaultCurrencyLabels 纸币分类模型的类别顺序
var DefaultCurrencyLabels = []string{
	"Ten Rupees",
	"Twenty Rupees",
	"Fifty Rupees",
	"Hundred Rupees",
	"Two Hundred Rupees",
	"Five Hundred Rupees",
	"Two Thousand Rupees",
}

// Load 从 YAML 文件加载配置，环境变量优先
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// New 使用默认配置路径加载配置
func New() *Config {
	// .env 只用于本地开发，不存在时忽略
	_ = godotenv.Load()

	cfg, err := Load("config.yaml")
	if err != nil {
		// 没有配置文件时仍然读取默认值和环境变量
		cfg, err = unmarshal(newViper())
		if err != nil {
			return Default()
		}
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize 非法的画面尺寸和面积阈值回退到默认值
func (c *Config) normalize() {
	d := Default()
	if c.Detection.FrameSize <= 0 {
		c.Detection.FrameSize = d.Detection.FrameSize
	}
	if c.Detection.MinArea <= 0 {
		c.Detection.MinArea = d.Detection.MinArea
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("upload.max_size", d.Upload.MaxSize)
	v.SetDefault("upload.allowed_types", d.Upload.AllowedTypes)

	v.SetDefault("detection.backend", d.Detection.Backend)
	v.SetDefault("detection.model_path", d.Detection.ModelPath)
	v.SetDefault("detection.config_path", d.Detection.ConfigPath)
	v.SetDefault("detection.inference_url", d.Detection.InferenceURL)
	v.SetDefault("detection.health_url", d.Detection.HealthURL)
	v.SetDefault("detection.frame_size", d.Detection.FrameSize)
	v.SetDefault("detection.min_confidence", d.Detection.MinConfidence)
	v.SetDefault("detection.min_area", d.Detection.MinArea)
	v.SetDefault("detection.allow_list", d.Detection.AllowList)
	v.SetDefault("detection.max_concurrent", d.Detection.MaxConcurrent)
	v.SetDefault("detection.queue_timeout", d.Detection.QueueTimeout)
	v.SetDefault("detection.request_timeout", d.Detection.RequestTimeout)

	v.SetDefault("face.enabled", d.Face.Enabled)
	v.SetDefault("face.model_dir", d.Face.ModelDir)
	v.SetDefault("face.samples_dir", d.Face.SamplesDir)
	v.SetDefault("face.tolerance", d.Face.Tolerance)

	v.SetDefault("currency.enabled", d.Currency.Enabled)
	v.SetDefault("currency.model_path", d.Currency.ModelPath)
	v.SetDefault("currency.input_size", d.Currency.InputSize)
	v.SetDefault("currency.min_confidence", d.Currency.MinConfidence)
	v.SetDefault("currency.labels", d.Currency.Labels)

	v.SetDefault("sms.enabled", d.SMS.Enabled)
	v.SetDefault("sms.account_sid", d.SMS.AccountSID)
	v.SetDefault("sms.auth_token", d.SMS.AuthToken)
	v.SetDefault("sms.from", d.SMS.From)
	v.SetDefault("sms.to", d.SMS.To)
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      10 * time.Minute,
		},
		Upload: UploadConfig{
			MaxSize:      10 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg"},
		},
		Detection: DetectionConfig{
			Backend:        "dnn",
			ModelPath:      "./models/frozen_inference_graph.pb",
			ConfigPath:     "./models/ssd_mobilenet_v2_coco.pbtxt",
			InferenceURL:   "http://localhost:5000/predict",
			FrameSize:      600,
			MinConfidence:  0.25,
			MinArea:        8000,
			AllowList:      append([]string(nil), DefaultAllowList...),
			MaxConcurrent:  2,
			QueueTimeout:   30 * time.Second,
			RequestTimeout: 15 * time.Second,
		},
		Face: FaceConfig{
			Enabled:    true,
			ModelDir:   "./models/dlib",
			SamplesDir: "./faces",
			Tolerance:  0.36,
		},
		Currency: CurrencyConfig{
			Enabled:       true,
			ModelPath:     "./models/currency.onnx",
			InputSize:     224,
			MinConfidence: 0.5,
			Labels:        append([]string(nil), DefaultCurrencyLabels...),
		},
		SMS: SMSConfig{
			Enabled: true,
		},
	}
}

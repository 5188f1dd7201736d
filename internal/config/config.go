package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Mongo         MongoConfig         `mapstructure:"mongo"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Upload        UploadConfig        `mapstructure:"upload"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
	Seed    bool   `mapstructure:"seed"` // 启动时写入示例视频
}

// StorageConfig 存储后端选择
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // mongo | memory
}

// InMemory 是否使用内存存储（本地调试，无需外部依赖）
func (s *StorageConfig) InMemory() bool {
	return s.Driver == "memory"
}

// DatabaseConfig 数据库配置（账号、订阅关系）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MongoConfig MongoDB 配置（视频、评论、点赞、播放列表）
type MongoConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	Timeout        int    `mapstructure:"timeout"` // 秒，单次操作超时
	MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// TimeoutDuration 返回单次操作超时时间
func (m *MongoConfig) TimeoutDuration() time.Duration {
	if m.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(m.Timeout) * time.Second
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	PublicEndpoint string `mapstructure:"public_endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	VideoBucket    string `mapstructure:"video_bucket"`
	ThumbBucket    string `mapstructure:"thumb_bucket"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// Topic 按名称取 topic，未配置时返回名称本身
func (k *KafkaConfig) Topic(name string) string {
	if t, ok := k.Topics[name]; ok && t != "" {
		return t
	}
	return name
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Hosts   []string          `mapstructure:"hosts"`
	Index   map[string]string `mapstructure:"index"`
}

// VideoIndex 返回视频索引名
func (e *ElasticsearchConfig) VideoIndex() string {
	if name := e.Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// RateRule 单条限流规则：window 内最多 max 次
type RateRule struct {
	Max    int `mapstructure:"max"`
	Window int `mapstructure:"window"` // 秒
}

// WindowDuration 返回限流窗口
func (r RateRule) WindowDuration() time.Duration {
	return time.Duration(r.Window) * time.Second
}

// RateLimitConfig 限流配置（按客户端 IP）
type RateLimitConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	General RateRule `mapstructure:"general"`
	Comment RateRule `mapstructure:"comment"`
	Upload  RateRule `mapstructure:"upload"`
	Search  RateRule `mapstructure:"search"`
	Auth    RateRule `mapstructure:"auth"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	LikeStatusTTL    int `mapstructure:"like_status_ttl"`    // 秒
	FilterOptionsTTL int `mapstructure:"filter_options_ttl"` // 秒
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSizeMB        int64  `mapstructure:"max_size_mb"`
	DefaultThumbnail string `mapstructure:"default_thumbnail"`
}

// 全局配置实例
var globalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vidhub-go")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8000)

	v.SetDefault("storage.driver", "mongo")

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "vidhub")
	v.SetDefault("mongo.timeout", 5)
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("mongo.migrate_on_start", true)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("minio.video_bucket", "public-videos")
	v.SetDefault("minio.thumb_bucket", "public-thumbnails")

	v.SetDefault("kafka.topics", map[string]string{"engagement": "vidhub.engagement"})
	v.SetDefault("kafka.group_id", "vidhub-index-worker")

	v.SetDefault("elasticsearch.index", map[string]string{"videos": "videos"})

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.general", map[string]int{"max": 100, "window": 900})
	v.SetDefault("ratelimit.comment", map[string]int{"max": 10, "window": 300})
	v.SetDefault("ratelimit.upload", map[string]int{"max": 3, "window": 3600})
	v.SetDefault("ratelimit.search", map[string]int{"max": 30, "window": 60})
	v.SetDefault("ratelimit.auth", map[string]int{"max": 5, "window": 900})

	v.SetDefault("cache.like_status_ttl", 30)
	v.SetDefault("cache.filter_options_ttl", 300)

	v.SetDefault("upload.max_size_mb", 100)
	v.SetDefault("upload.default_thumbnail", "https://via.placeholder.com/640x360?text=No+Thumbnail")
}

// Load 加载配置文件，环境变量（VIDHUB_ 前缀）优先于文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("VIDHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Set 替换全局配置（测试或嵌入式启动时使用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetMongo 获取 MongoDB 配置
func GetMongo() *MongoConfig {
	return &Get().Mongo
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

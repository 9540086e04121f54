package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	DepositCompleted string `mapstructure:"deposit_completed"`
}

// BusinessConfig 业务策略配置
// 存款上限、会话有效期、过期安全缓冲属于策略值，按部署环境调整，不写死在代码里
type BusinessConfig struct {
	DepositCeilingCents        int64 `mapstructure:"deposit_ceiling_cents"`         // 单笔存款上限（分）
	SessionLifetimeMinutes     int   `mapstructure:"session_lifetime_minutes"`      // 会话有效期（分钟）
	SessionExpiryBufferMinutes int   `mapstructure:"session_expiry_buffer_minutes"` // 会话过期安全缓冲（分钟）
	MaxRetryCount              int   `mapstructure:"max_retry_count"`               // outbox 消息最大重试次数
	AccountNumberMaxAttempts   int   `mapstructure:"account_number_max_attempts"`   // 账号生成碰撞重试上限
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	GlobalConfig = config
	return config
}

package config

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logstash LogstashConfig `mapstructure:"logstash"`
	SQS      SQSConfig      `mapstructure:"sqs"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 日志远程上报配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// SQSConfig 通知事件队列配置
type SQSConfig struct {
	QueueURL           string `mapstructure:"queue_url"`
	Region             string `mapstructure:"region"`
	Endpoint           string `mapstructure:"endpoint"`
	AccessKey          string `mapstructure:"access_key"`
	SecretKey          string `mapstructure:"secret_key"`
	MaxMessages        int32  `mapstructure:"max_messages"`
	WaitTimeSeconds    int32  `mapstructure:"wait_time_seconds"`
	PollBackoffSeconds int    `mapstructure:"poll_backoff_seconds"`
}

// NotifyConfig 通知业务配置
type NotifyConfig struct {
	// TypeMap 事件类型到落库类型的归一化映射，空则使用内置默认值
	TypeMap       map[string]string `mapstructure:"type_map"`
	RetentionDays int               `mapstructure:"retention_days"`
}

package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"7777"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Discord 机器人
	DiscordBotToken string `env:"DISCORD_BOT_TOKEN,notEmpty"`
	BotTrigger      string `env:"BOT_TRIGGER" envDefault:"w.ลบพื้นหลัง"`

	// remove.bg
	RemoveBgAPIKey  string        `env:"REMOVEBG_API_KEY,notEmpty"`
	RemoveBgAPIURL  string        `env:"REMOVEBG_API_URL" envDefault:"https://api.remove.bg/v1.0/removebg"`
	RemoveBgSize    string        `env:"REMOVEBG_SIZE" envDefault:"auto"`
	RemoveBgTimeout time.Duration `env:"REMOVEBG_TIMEOUT" envDefault:"0s"`

	DashboardLimit   int           `env:"DASHBOARD_LIMIT" envDefault:"50"`
	DashboardRefresh time.Duration `env:"DASHBOARD_REFRESH" envDefault:"10s"`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DB_USER" envDefault:""`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBAddr     string `env:"DB_ADDR" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"removebg"`
	DBPath     string `env:"DB_PATH" envDefault:"datas/removebg_history.db"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	StorageType          string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"public"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"/"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// MinIO 存储配置
	StorageMinIOEndpoint  string `env:"STORAGE_MINIO_ENDPOINT"`
	StorageMinIOBucket    string `env:"STORAGE_MINIO_BUCKET"`
	StorageMinIOPrefix    string `env:"STORAGE_MINIO_PREFIX"`
	StorageMinIOAccessKey string `env:"STORAGE_MINIO_ACCESS_KEY"`
	StorageMinIOSecretKey string `env:"STORAGE_MINIO_SECRET_KEY"`
	StorageMinIOUseSSL    bool   `env:"STORAGE_MINIO_USE_SSL" envDefault:"true"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	if Conf.DashboardLimit <= 0 || Conf.DashboardLimit > 50 {
		Conf.DashboardLimit = 50
	}
	logrus.WithFields(logrus.Fields{
		"http_port":    Conf.HTTPPort,
		"db_type":      Conf.DBType,
		"storage_type": Conf.StorageType,
		"trigger":      Conf.BotTrigger,
	}).Debug("config loaded")
	return Conf, nil
}

// Level 返回配置的日志级别，无法解析时回退到 info。
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

package config

import (
	"sync"
)

var (
	s3Once   sync.Once
	s3Config *S3Config
)

// S3Config 导出产物使用的 S3 配置
type S3Config struct {
	BucketName   string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

func GetS3Config() *S3Config {
	s3Once.Do(func() {
		loadEnv()

		s3Config = &S3Config{}
		envString("AWS_S3_BUCKET_NAME", &s3Config.BucketName)
		envString("AWS_REGION", &s3Config.Region)
		envString("AWS_ENDPOINT", &s3Config.Endpoint)
		envString("AWS_ACCESS_KEY", &s3Config.AccessKey)
		envString("AWS_SECRET_KEY", &s3Config.SecretKey)
		envBool("AWS_S3_PATH_STYLE", &s3Config.UsePathStyle)
	})
	return s3Config
}

package config

import (
	"sync"
)

var (
	minioOnce   sync.Once
	minioConfig *MinioConfig
)

type MinioConfig struct {
	AccessKey  string
	SecretKey  string
	Endpoint   string
	UseSSL     bool
	Region     string
	BucketName string
}

func GetMinioConfig() *MinioConfig {
	minioOnce.Do(func() {
		loadEnv()

		minioConfig = &MinioConfig{}
		envString("MINIO_ACCESS_KEY", &minioConfig.AccessKey)
		envString("MINIO_SECRET_KEY", &minioConfig.SecretKey)
		envString("MINIO_ENDPOINT", &minioConfig.Endpoint)
		envBool("MINIO_USE_SSL", &minioConfig.UseSSL)
		envString("MINIO_REGION", &minioConfig.Region)
		envString("MINIO_BUCKET_NAME", &minioConfig.BucketName)
	})
	return minioConfig
}

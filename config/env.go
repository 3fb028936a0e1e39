package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// loadEnv loads the project .env once; variables already set in the process win.
func loadEnv() {
	envOnce.Do(func() {
		// 获取当前文件的目录
		_, filename, _, _ := runtime.Caller(0)
		rootDir := filepath.Dir(filepath.Dir(filename))
		envPath := filepath.Join(rootDir, ".env")

		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
		}
	})
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envList(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: ignoring invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: ignoring invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = b
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: ignoring invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = d
}

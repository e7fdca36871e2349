package auth

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// Course login variables.
const (
	EnvCourseEmail    = "MEMRISE_EMAIL"
	EnvCoursePassword = "MEMRISE_PASSWORD"
)

// envFiles are loaded in order; variables already set are never overridden,
// so .env.local must come first to take precedence over .env.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env files from each directory and returns the files read.
// Missing files are skipped.
func LoadEnvFiles(dirs ...string) []string {
	var loaded []string
	for _, dir := range dirs {
		for _, name := range envFiles {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				logger.Warn("loading %s: %v", path, err)
				continue
			}
			logger.Debug("loaded %s", path)
			loaded = append(loaded, path)
		}
	}
	return loaded
}

// CourseCredentials returns the course login from the environment.
func CourseCredentials() domain.Credentials {
	return domain.Credentials{
		Email:    os.Getenv(EnvCourseEmail),
		Password: os.Getenv(EnvCoursePassword),
	}
}

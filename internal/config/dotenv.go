package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads .env.local and .env from the working directory,
// in that order. Variables already present in the process environment
// are never overwritten, so real env vars beat both files and
// .env.local beats .env. The returned slice names the files that
// existed and were handed to godotenv.
func LoadDotEnv() []string {
	var found []string
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}

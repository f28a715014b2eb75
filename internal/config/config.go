// Package config resolves the API credential from the environment. A local
// .env file, when present, is loaded before the lookup so deployments can
// keep the key out of the shell profile.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the Places API key.
const APIKeyEnv = "GOOGLE_API_KEY"

// LoadAPIKey loads .env (best effort) and returns the API key. An empty or
// missing key is an error: no network call works without it.
func LoadAPIKey() (string, error) {
	_ = godotenv.Load()

	key := strings.TrimSpace(os.Getenv(APIKeyEnv))
	if key == "" {
		return "", fmt.Errorf("%s is not set (export it or add it to .env)", APIKeyEnv)
	}
	return key, nil
}

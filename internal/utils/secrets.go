package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir is where Docker mounts secrets.
var SecretsDir = "/run/secrets"

// ReadSecret reads a Docker secret by name. Surrounding whitespace is trimmed
// and an empty file is an error.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv prefers the Docker secret and falls back to the
// environment variable envKey.
func ReadSecretOrEnv(secretName, envKey string) (string, error) {
	if secret, err := ReadSecret(secretName); err == nil {
		return secret, nil
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %q not found in %s and %s is not set", secretName, SecretsDir, envKey)
}

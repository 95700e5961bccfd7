package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via environment or configuration.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// Load returns the trimmed secret from File or, when File is unset, from Value.
// Secrets end up in request headers, so values spanning several lines are rejected.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	origin := "value"
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		origin = fmt.Sprintf("file %q", file)
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if file != "" {
			return "", fmt.Errorf("%s %s is empty", name, origin)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	if strings.ContainsAny(secret, "\r\n") {
		return "", fmt.Errorf("%s from %s spans several lines", name, origin)
	}

	return secret, nil
}

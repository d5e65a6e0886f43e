package config

import (
	"os"
	"strings"
)

const envFileName = ".env"

// initEnvFile loads KEY=VALUE pairs from an optional .env file in the working
// directory. Variables already set in the environment win.
func initEnvFile() {
	data, err := os.ReadFile(envFileName)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		if key == "" {
			continue
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}

package helper

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oiluj0002/raw-data-loader/constants"
)

// GetEnvName converts name into a prefixed environment variable name, upper
// cased with dashes converted to underscores.
func GetEnvName(name string) string {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}

// GetEnvVar fetches an OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	}
	if mandatory {
		return "", fmt.Errorf("environment variable %v is not set", k)
	}
	return "", nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will return the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

// ReadIntFromEnvWithDefault will read the value of name from the environment
// as an integer. An unset variable yields the default; a malformed one is an error.
func ReadIntFromEnvWithDefault(name string, defaultValue int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %v is not an integer: %q", name, v)
	}
	return i, nil
}

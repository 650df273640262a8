package rolesync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credential keys read from the credentials file.
const (
	AccessKeyIDKey     = "AWS_ACCESS_KEY_ID"
	SecretAccessKeyKey = "AWS_SECRET_ACCESS_KEY"
)

// Credentials authenticate the identity provider client.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// LoadCredentials reads KEY=VALUE lines from path. Lines without "=" and lines
// starting with "#" are skipped. Both keys must be present and non-empty.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: %s does not exist", ErrCredentials, path)
		}
		return Credentials{}, fmt.Errorf("%w: read %s: %v", ErrCredentials, path, err)
	}
	vars, err := godotenv.Unmarshal(assignments(string(data)))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: parse %s: %v", ErrCredentials, path, err)
	}
	c := Credentials{
		AccessKeyID:     vars[AccessKeyIDKey],
		SecretAccessKey: vars[SecretAccessKeyKey],
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("%w: AWS credentials not found in %s", ErrCredentials, path)
	}
	return c, nil
}

// assignments keeps the KEY=VALUE lines of a credentials file. Unquoted values
// are single-quoted so they are taken literally: no inline "#" comments, no
// variable expansion.
func assignments(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(strings.TrimSpace(line), "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(literal(value))
		b.WriteByte('\n')
	}
	return b.String()
}

func literal(value string) string {
	if value == "" || strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "'") || strings.Contains(value, "'") {
		return value
	}
	return "'" + value + "'"
}

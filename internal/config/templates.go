package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "config":
		return configTemplate, nil
	case "schema":
		return schemaTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const configTemplate = `schema = "schema.toml"

[server]
name = "tlvd"
addr = ":9400"
cors_origins = ["http://localhost:3000"]

[log]
level = "info"
timestamp = true
no_color = false
`

const schemaTemplate = `name = "example"

[[field]]
type = 1
name = "id"
kind = "string"
max_len = 64
required = true

[[field]]
type = 2
name = "version"
kind = "u16"
required = true

[[field]]
type = 3
name = "payload"
kind = "bytes"
`

package config

import "github.com/danmuck/msgtlv/internal/protocol/schema"

// FieldEntry is an inline [[field]] table in the config file.
type FieldEntry struct {
	Type     uint8  `toml:"type"`
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	MinLen   int    `toml:"min_len"`
	MaxLen   int    `toml:"max_len"`
	Required bool   `toml:"required"`
}

func SchemaFields(entries []FieldEntry) []schema.FieldSpec {
	fields := make([]schema.FieldSpec, 0, len(entries))
	for _, entry := range entries {
		fields = append(fields, schema.FieldSpec{
			Type:     entry.Type,
			Name:     entry.Name,
			Kind:     schema.Kind(entry.Kind),
			MinLen:   entry.MinLen,
			MaxLen:   entry.MaxLen,
			Required: entry.Required,
		})
	}
	return fields
}

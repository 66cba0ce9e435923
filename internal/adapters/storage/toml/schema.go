package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int                    `toml:"version"`
	Entries map[string]entrySchema `toml:"entries"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Entries == nil {
		s.Entries = map[string]entrySchema{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type entrySchema struct {
	Value    string `toml:"value"`
	StoredAt string `toml:"stored_at,omitempty"`
}

// Package config loads a litemigrate change-set file: the backend descriptor,
// optional ledger settings and the ordered migration list.
//
// Two formats are accepted, chosen by file extension:
//   - .cue: CUE, unified with a schema before decoding
//   - anything else (.yaml, .yml): YAML with unknown fields rejected
//
// Example (YAML):
//
//	backend:
//	  kind: sqlite
//	  path: app.db
//	table: migration
//	baseline: 1
//	migrations:
//	  - version: 2
//	    up: CREATE TABLE player(name VARCHAR NOT NULL, score INTEGER)
//	    down: DROP TABLE player
//
// Connection settings may be overridden from the environment (see the Env*
// constants) so credentials need not live in the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/litemigrate/internal/backend"
	"github.com/roach88/litemigrate/internal/migration"
)

// Environment variables consulted by Load.
const (
	EnvConfig   = "LITEMIGRATE_CONFIG"
	EnvDSN      = "LITEMIGRATE_DSN"
	EnvHost     = "LITEMIGRATE_HOST"
	EnvPort     = "LITEMIGRATE_PORT"
	EnvPassword = "LITEMIGRATE_PASSWORD"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "litemigrate.yaml"

// File is a parsed change-set file.
type File struct {
	Backend    backend.Descriptor    `json:"backend" yaml:"backend"`
	Table      string                `json:"table,omitempty" yaml:"table,omitempty"`
	Baseline   *int64                `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Migrations []migration.Migration `json:"migrations,omitempty" yaml:"migrations,omitempty"`
}

// BaselineOr returns the configured baseline, or def when the file sets none.
func (f *File) BaselineOr(def int64) int64 {
	if f.Baseline == nil {
		return def
	}
	return *f.Baseline
}

// schema constrains CUE change-set files before decoding.
const schema = `
backend: {
	kind:      "sqlite" | "postgres" | "mysql"
	path?:     string
	host?:     string
	port?:     int & >0 & <65536
	user?:     string
	password?: string
	database?: string
	dsn?:      string
}
table?:    =~"^[A-Za-z_][A-Za-z0-9_]*$"
baseline?: int & >=0
migrations?: [...{
	version: int & >0
	up:      string
	down?:   string
}]
`

// Load reads the change-set file at path, applies environment overrides,
// normalizes statement text and validates the migration list. The returned
// migrations are sorted ascending by version.
//
// Every failure is a migration configuration error, except an invalid
// migration list which is a sequence error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, migration.NewConfigurationError(fmt.Sprintf("read config %s", path), err)
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		f, err = decodeCUE(path, data)
	default:
		f, err = decodeYAML(data)
	}
	if err != nil {
		return nil, migration.NewConfigurationError(fmt.Sprintf("parse config %s", path), err)
	}

	if f.Baseline != nil && *f.Baseline < 0 {
		return nil, migration.NewConfigurationError(
			fmt.Sprintf("invalid baseline %d in %s: must be a non-negative integer", *f.Baseline, path), nil)
	}

	if err := applyEnv(f); err != nil {
		return nil, err
	}

	for i := range f.Migrations {
		f.Migrations[i].Up = norm.NFC.String(f.Migrations[i].Up)
		f.Migrations[i].Down = norm.NFC.String(f.Migrations[i].Down)
	}

	if err := migration.Validate(f.Migrations); err != nil {
		return nil, err
	}
	f.Migrations = migration.Sort(f.Migrations)

	return f, nil
}

func decodeYAML(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config file is empty")
		}
		return nil, err
	}
	return &f, nil
}

func decodeCUE(path string, data []byte) (*File, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, err
	}

	v = ctx.CompileString(schema).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// applyEnv overrides connection settings from the environment.
func applyEnv(f *File) error {
	if v, ok := os.LookupEnv(EnvDSN); ok && v != "" {
		f.Backend.DSN = v
	}
	if v, ok := os.LookupEnv(EnvHost); ok && v != "" {
		f.Backend.Host = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		f.Backend.Password = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port <= 0 || port > 65535 {
			return migration.NewConfigurationError(fmt.Sprintf("invalid %s %q", EnvPort, v), err)
		}
		f.Backend.Port = port
	}
	return nil
}

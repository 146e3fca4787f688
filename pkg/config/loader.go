package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var loadDefaultEnv = sync.OnceFunc(func() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()
})

// LoadEnv loads variables from the given .env files into the process
// environment. Variables that are already set are left untouched, so earlier
// files take precedence over later ones. With no paths it loads ./.env and
// ignores its absence.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrLoadingEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("%w: %v", ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv is like LoadEnv but panics on error.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(err)
	}
}

// Load populates v from the environment using `env` and `envDefault` struct
// tags. The default .env file is read once per process before the first parse.
//
// Example:
//
//	var cfg editor.Settings
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDefaultEnv()

	if err := env.Parse(v); err != nil {
		return fmt.Errorf("%w: %v", ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}

// LoadFile decodes the YAML file at path into v and then applies the
// environment on top of it. Fields the file does not mention keep the values v
// already holds, which lets callers pass a struct pre-filled with defaults.
//
// Environment overrides are applied for `env` tags only; an `envDefault` tag
// would overwrite the file's value and should not be used on such structs.
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadingFile, err)
	}
	if err := Decode(bytes.NewReader(data), v); err != nil {
		return err
	}
	return Load(v)
}

// Decode reads one YAML document from r into v. Unknown keys are rejected so
// that typos in a config file surface at startup.
func Decode[T any](r io.Reader, v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrDecodingFile, err)
	}
	return nil
}

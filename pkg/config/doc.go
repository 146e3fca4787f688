// Package config loads application configuration from environment variables
// and, optionally, a YAML file.
//
// It wraps `github.com/joho/godotenv`, `github.com/caarlos0/env/v11` and
// `gopkg.in/yaml.v3`:
//
//   - LoadEnv reads one or more `.env` files into the process environment.
//     Variables already present are never overwritten.
//   - Load parses the environment into any struct using `env` tags. The
//     default `.env` in the working directory is read once per process.
//   - LoadFile decodes a YAML file into a struct and then applies the
//     environment on top, so deployments can override single keys.
//   - MustLoad and MustLoadEnv panic instead of returning errors.
//
// # Usage
//
//	type Settings struct {
//	    Backend string `env:"UEDITOR_BACKEND" envDefault:"local"`
//	    Root    string `env:"UEDITOR_ROOT" envDefault:"./public"`
//	}
//
//	var s Settings
//	if err := config.Load(&s); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// A file-backed struct is usually pre-filled with defaults so that keys
// missing from the file keep their values:
//
//	cfg := editor.DefaultConfig()
//	if err := config.LoadFile("ueditor.yaml", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Unknown YAML keys are rejected.
//
// # Error Handling
//
// All errors wrap one of the sentinels below and can be matched with
// errors.Is:
//
//   - ErrParsingConfig: the environment could not be parsed into the struct.
//   - ErrNilPointer: a nil pointer was passed to a loader.
//   - ErrLoadingEnvFile: an explicitly named .env file could not be read.
//   - ErrReadingFile: the YAML file could not be read.
//   - ErrDecodingFile: the YAML file is malformed or has unknown keys.
package config

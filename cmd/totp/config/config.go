// Package config contains shared configuration settings for totp
// subcommands.
package config

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/getpass"
	"github.com/creachadair/totpcli/keystore"
	"github.com/creachadair/totpcli/keystore/vault"
	"github.com/creachadair/totpcli/otpgen"
	yaml "gopkg.in/yaml.v3"
)

// Settings are shared settings used by totp subcommands.  Fields left empty
// by flags fall back to the config file, then to defaults.
type Settings struct {
	Tool      string `yaml:"tool"`      // external generator command line
	Generator string `yaml:"generator"` // "exec" or "library"
	VaultPath string `yaml:"vault"`     // if set, use the file vault backend
	IndexPath string `yaml:"index"`     // keyring service-name index file

	Service string `yaml:"-"` // from the -s flag
	Copy    bool   `yaml:"-"` // from the -c flag
}

// Load reads the YAML config file at path, if it exists, and fills in any
// settings not already set.  A missing or empty path is not an error.
func (s *Settings) Load(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	s.Tool = cmp.Or(s.Tool, file.Tool)
	s.Generator = cmp.Or(s.Generator, file.Generator)
	s.VaultPath = cmp.Or(s.VaultPath, file.VaultPath)
	s.IndexPath = cmp.Or(s.IndexPath, file.IndexPath)
	return nil
}

// Path returns the config file path: $TOTP_CONFIG if set, otherwise
// totp/config.yaml under the user's config directory.
func Path() string {
	if p := os.Getenv("TOTP_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "totp", "config.yaml")
}

// Get returns the settings associated with env.
func Get(env *command.Env) *Settings { return env.Config.(*Settings) }

// Service returns the service name given by the -s flag, or an error if none
// was provided.
func Service(env *command.Env) (string, error) {
	svc := Get(env).Service
	if svc == "" {
		return "", env.Usagef("a service name (-s) is required")
	}
	return svc, nil
}

// OpenStore opens the secret store selected by the settings in env: the
// encrypted file vault if a vault path is configured, otherwise the OS
// keyring.
func OpenStore(env *command.Env) (keystore.Store, error) {
	set := Get(env)
	if set.VaultPath != "" {
		pp, err := vaultPassphrase()
		if err != nil {
			return nil, err
		}
		return vault.Open(set.VaultPath, pp)
	}
	ip, err := set.indexPath()
	if err != nil {
		return nil, err
	}
	return keystore.NewKeyring(ip), nil
}

// Generator returns the code generator selected by the settings in env.
func Generator(env *command.Env) (otpgen.Generator, error) {
	set := Get(env)
	switch set.Generator {
	case "", "exec":
		argv := strings.Fields(set.Tool)
		if len(argv) == 0 {
			return otpgen.External{}, nil
		}
		return otpgen.External{Tool: argv[0], Args: argv[1:]}, nil
	case "library":
		return otpgen.Library{}, nil
	}
	return nil, fmt.Errorf("unknown generator %q", set.Generator)
}

func (s *Settings) indexPath() (string, error) {
	if s.IndexPath != "" {
		return s.IndexPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "totp", "services.json"), nil
}

func vaultPassphrase() (string, error) {
	if pp, ok := os.LookupEnv("TOTP_PASSPHRASE"); ok {
		return pp, nil
	}
	pp, err := getpass.Prompt("Vault passphrase: ")
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return pp, nil
}

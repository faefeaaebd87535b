// Package vault implements an encrypted single-file secret store for the
// totp tool, an alternative to the operating system keyring.
//
// # Storage Format
//
// On disk, a vault is a single JSON object in this layout:
//
//	{
//	   "format":  "tv1",
//	   "keySalt": "<base64-encoded-key-salt>",
//	   "data":    "<base64-encoded-data>"
//	}
//
// The data value is the JSON encoding of the service-to-secret map, sealed
// with the AEAD construction over XChaCha20-Poly1305 using the format label
// as associated data.  The encryption key is derived from a user-provided
// passphrase via HKDF-SHA256 with the stored salt.
package vault

import (
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/totpcli/keystore"
)

// Format is the storage format label supported by this package.
const Format = "tv1"

// saltLen is the length in bytes of the generated key salt.
const saltLen = 32

// A Vault is a keystore.Store whose contents are encrypted at rest in a
// single file.  Mutations are written back to the file atomically.
type Vault struct {
	path       string
	passphrase string
	salt       []byte
	services   map[string]string
}

type vaultJSON struct {
	Format  string `json:"format"`
	KeySalt []byte `json:"keySalt"`
	Data    []byte `json:"data"`
}

// Open opens the vault at path using the given passphrase.  If path does not
// exist, Open returns a new empty vault that will be created when a secret
// is first stored.
func Open(path, passphrase string) (*Vault, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		salt := make([]byte, saltLen)
		if _, err := crand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate key salt: %w", err)
		}
		return &Vault{
			path:       path,
			passphrase: passphrase,
			salt:       salt,
			services:   make(map[string]string),
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	var w vaultJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	if w.Format != Format {
		return nil, fmt.Errorf("unsupported vault format %q", w.Format)
	}
	key, err := deriveKey(passphrase, w.KeySalt)
	if err != nil {
		return nil, err
	}
	plain, err := unseal(key, w.Data)
	if err != nil {
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}
	v := &Vault{
		path:       path,
		passphrase: passphrase,
		salt:       w.KeySalt,
		services:   make(map[string]string),
	}
	if err := json.Unmarshal(plain, &v.services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return v, nil
}

// Set implements part of the keystore.Store interface.
func (v *Vault) Set(service, secret string) error {
	v.services[service] = secret
	return v.save()
}

// Get implements part of the keystore.Store interface.
func (v *Vault) Get(service string) (string, error) {
	secret, ok := v.services[service]
	if !ok {
		return "", keystore.ErrNotFound
	}
	return secret, nil
}

// Delete implements part of the keystore.Store interface.
func (v *Vault) Delete(service string) error {
	if _, ok := v.services[service]; !ok {
		return keystore.ErrNotFound
	}
	delete(v.services, service)
	return v.save()
}

// List implements part of the keystore.Store interface.
func (v *Vault) List() ([]string, error) {
	return slices.Sorted(maps.Keys(v.services)), nil
}

func (v *Vault) save() error {
	plain, err := json.Marshal(v.services)
	if err != nil {
		return fmt.Errorf("encode services: %w", err)
	}
	key, err := deriveKey(v.passphrase, v.salt)
	if err != nil {
		return err
	}
	sealed, err := seal(key, plain)
	if err != nil {
		return fmt.Errorf("encrypt vault: %w", err)
	}
	data, err := json.Marshal(vaultJSON{Format: Format, KeySalt: v.salt, Data: sealed})
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	return atomicfile.Tx(v.path, 0600, func(f io.Writer) error {
		_, err := f.Write(data)
		return err
	})
}

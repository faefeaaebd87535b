package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/creachadair/atomicfile"
	"github.com/zalando/go-keyring"
)

// keyringService is the service label under which entries are filed in the
// OS keyring.
const keyringService = "com.creachadair.totp"

// A Keyring is a Store backed by the operating system keyring.  The keyring
// cannot enumerate its own entries, so a Keyring maintains a sidecar index
// file recording the names of the configured services.
type Keyring struct {
	indexPath string
}

// NewKeyring constructs a keyring store whose service-name index is kept at
// indexPath.
func NewKeyring(indexPath string) *Keyring { return &Keyring{indexPath: indexPath} }

// Set implements part of the Store interface.
func (k *Keyring) Set(service, secret string) error {
	if err := keyring.Set(keyringService, service, secret); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return k.editIndex(func(names []string) []string {
		if slices.Contains(names, service) {
			return names
		}
		names = append(names, service)
		slices.Sort(names)
		return names
	})
}

// Get implements part of the Store interface.
func (k *Keyring) Get(service string) (string, error) {
	secret, err := keyring.Get(keyringService, service)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return secret, nil
}

// Delete implements part of the Store interface.
func (k *Keyring) Delete(service string) error {
	err := keyring.Delete(keyringService, service)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return k.editIndex(func(names []string) []string {
		if i := slices.Index(names, service); i >= 0 {
			return slices.Delete(names, i, i+1)
		}
		return names
	})
}

// List implements part of the Store interface.
func (k *Keyring) List() ([]string, error) { return k.readIndex() }

func (k *Keyring) readIndex() ([]string, error) {
	data, err := os.ReadFile(k.indexPath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (k *Keyring) editIndex(edit func([]string) []string) error {
	names, err := k.readIndex()
	if err != nil {
		return err
	}
	data, err := json.Marshal(edit(names))
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(k.indexPath), 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	return atomicfile.Tx(k.indexPath, 0600, func(f io.Writer) error {
		_, err := f.Write(data)
		return err
	})
}

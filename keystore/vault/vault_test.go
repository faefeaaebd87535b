package vault_test

import (
	crand "crypto/rand"
	"errors"
	"io"
	mrand "math/rand"
	"path/filepath"
	"testing"

	"github.com/creachadair/mds/mtest"
	"github.com/creachadair/totpcli/keystore"
	"github.com/creachadair/totpcli/keystore/vault"
	gocmp "github.com/google/go-cmp/cmp"
)

func TestVault(t *testing.T) {
	// Stub out the random generator for the test so that we don't thrash the
	// system entropy pool for unit tests.
	mtest.Swap[io.Reader](t, &crand.Reader, mrand.New(mrand.NewSource(20250825113002)))

	const testPass = "cellar door"
	vpath := filepath.Join(t.TempDir(), "vault.json")

	v, err := vault.Open(vpath, testPass)
	if err != nil {
		t.Fatalf("Open new vault: unexpected error: %v", err)
	}

	if got, err := v.Get("github"); !errors.Is(err, keystore.ErrNotFound) {
		t.Errorf("Get github: got %q, %v; want %v", got, err, keystore.ErrNotFound)
	}
	if err := v.Set("github", "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("Set github: unexpected error: %v", err)
	}
	if err := v.Set("aws", "KRSXG5A"); err != nil {
		t.Fatalf("Set aws: unexpected error: %v", err)
	}

	t.Run("RoundTrip", func(t *testing.T) {
		v2, err := vault.Open(vpath, testPass)
		if err != nil {
			t.Fatalf("Reopen vault: unexpected error: %v", err)
		}
		got, err := v2.Get("github")
		if err != nil {
			t.Fatalf("Get github: unexpected error: %v", err)
		}
		if got != "JBSWY3DPEHPK3PXP" {
			t.Errorf("Get github: got %q, want JBSWY3DPEHPK3PXP", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := v.Set("github", "MFRGGZDF"); err != nil {
			t.Fatalf("Set github: unexpected error: %v", err)
		}
		v2, err := vault.Open(vpath, testPass)
		if err != nil {
			t.Fatalf("Reopen vault: unexpected error: %v", err)
		}
		got, err := v2.Get("github")
		if err != nil {
			t.Fatalf("Get github: unexpected error: %v", err)
		}
		if got != "MFRGGZDF" {
			t.Errorf("Get github: got %q, want MFRGGZDF", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := v.List()
		if err != nil {
			t.Fatalf("List: unexpected error: %v", err)
		}
		want := []string{"aws", "github"}
		if diff := gocmp.Diff(names, want); diff != "" {
			t.Errorf("List (-got, +want):\n%s", diff)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := v.Delete("aws"); err != nil {
			t.Fatalf("Delete aws: unexpected error: %v", err)
		}
		if err := v.Delete("aws"); !errors.Is(err, keystore.ErrNotFound) {
			t.Errorf("Delete aws again: got %v, want %v", err, keystore.ErrNotFound)
		}
		v2, err := vault.Open(vpath, testPass)
		if err != nil {
			t.Fatalf("Reopen vault: unexpected error: %v", err)
		}
		if got, err := v2.Get("aws"); !errors.Is(err, keystore.ErrNotFound) {
			t.Errorf("Get aws after delete: got %q, %v; want %v", got, err, keystore.ErrNotFound)
		}
	})

	t.Run("WrongPass", func(t *testing.T) {
		v2, err := vault.Open(vpath, "wrong wrong wrong")
		if err == nil {
			t.Fatalf("Open with wrong pass: got %+v, want error", v2)
		} else {
			t.Logf("Open with wrong pass: got expected error: %v", err)
		}
	})
}

// Package cmdsvc implements the subcommands that manage stored service
// secrets.
package cmdsvc

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/getpass"
	"github.com/creachadair/mds/value"
	"github.com/creachadair/totpcli/cmd/totp/config"
	"github.com/creachadair/totpcli/keystore"
	"github.com/creachadair/totpcli/otpgen"
	"golang.org/x/term"
)

var Commands = []*command.C{
	{
		Name: "add",
		Help: `Store the secret for a new service.

The secret is taken from --secret or --url; with neither flag it is
read from the terminal with echo disabled, or from stdin when input
is piped. An error is reported if the service is already configured;
use update to replace an existing secret.`,
		SetFlags: command.Flags(flax.MustBind, &secretFlags),
		Run:      command.Adapt(runStore),
	},
	{
		Name: "update",
		Help: `Replace the secret for a configured service.

The secret is taken as for add. An error is reported if the service
is not already configured.`,
		SetFlags: command.Flags(flax.MustBind, &secretFlags),
		Run:      command.Adapt(runStore),
	},
	{
		Name: "remove",
		Help: "Remove the stored secret for a service.",
		Run:  command.Adapt(runRemove),
	},
	{
		Name: "list",
		Help: "List the configured service names.",
		Run:  command.Adapt(runList),
	},
}

var secretFlags struct {
	Secret string `flag:"secret,The Base32 secret to store"`
	URL    string `flag:"url,An otpauth:// URL carrying the secret"`
}

// runStore implements the "add" and "update" subcommands.
func runStore(env *command.Env) error {
	svc, err := config.Service(env)
	if err != nil {
		return err
	}
	secret, err := readSecret(env)
	if err != nil {
		return err
	}
	st, err := config.OpenStore(env)
	if err != nil {
		return err
	}

	isNew := env.Command.Name == "add"
	_, err = st.Get(svc)
	if err == nil && isNew {
		return fmt.Errorf("service %q already exists (use update)", svc)
	} else if errors.Is(err, keystore.ErrNotFound) {
		if !isNew {
			return fmt.Errorf("service %q is not configured", svc)
		}
	} else if err != nil {
		return err
	}

	if err := st.Set(svc, secret); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	fmt.Fprintf(env, "%s secret for %q\n", value.Cond(isNew, "Stored", "Updated"), svc)
	return nil
}

// runRemove implements the "remove" subcommand.
func runRemove(env *command.Env) error {
	svc, err := config.Service(env)
	if err != nil {
		return err
	}
	st, err := config.OpenStore(env)
	if err != nil {
		return err
	}
	if err := st.Delete(svc); errors.Is(err, keystore.ErrNotFound) {
		return fmt.Errorf("service %q is not configured", svc)
	} else if err != nil {
		return fmt.Errorf("remove secret: %w", err)
	}
	fmt.Fprintf(env, "Removed secret for %q\n", svc)
	return nil
}

// runList implements the "list" subcommand.
func runList(env *command.Env) error {
	st, err := config.OpenStore(env)
	if err != nil {
		return err
	}
	names, err := st.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// readSecret returns the normalized secret from the --secret or --url flag
// if one was set.  Otherwise it prompts at the terminal with echo disabled,
// or reads a single line from stdin when stdin is not a terminal.
func readSecret(env *command.Env) (string, error) {
	if secretFlags.Secret != "" && secretFlags.URL != "" {
		return "", env.Usagef("provide at most one of --secret and --url")
	}
	raw := cmp.Or(secretFlags.Secret, secretFlags.URL)
	if raw == "" {
		var err error
		if term.IsTerminal(int(os.Stdin.Fd())) {
			raw, err = getpass.Prompt("Secret or otpauth URL: ")
			if err != nil {
				return "", fmt.Errorf("read secret: %w", err)
			}
		} else {
			s := bufio.NewScanner(os.Stdin)
			if !s.Scan() {
				return "", cmp.Or(s.Err(), errors.New("no secret on stdin"))
			}
			raw = s.Text()
		}
	}
	return otpgen.ParseSecret(raw)
}

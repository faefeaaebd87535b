// Program totp stores per-service TOTP secrets in the operating system's
// credential store and prints the current six-digit code for a service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/totpcli/clipboard"
	"github.com/creachadair/totpcli/cmd/totp/config"
	"github.com/creachadair/totpcli/cmd/totp/internal/cmdsvc"
	"github.com/creachadair/totpcli/keystore"
)

func main() {
	var flags struct {
		Service string `flag:"s,Service name"`
		Copy    bool   `flag:"c,Copy the generated code to the clipboard"`
		Vault   string `flag:"vault,default=$TOTP_VAULT,Keep secrets in an encrypted file at this path instead of the OS keyring"`
		Builtin bool   `flag:"builtin,Generate codes with the built-in library instead of the external tool"`
	}
	root := &command.C{
		Name:  command.ProgramName(),
		Usage: "-s <service> [-c]\n<command> [flags] ...",
		Help: `Generate TOTP codes for configured services.

One Base32 secret is stored per service name in the operating system
keyring, and codes are produced by an external generator tool
(oathtool by default). Run with -s to print the current code for a
service, or use the add, update, remove, and list commands to manage
the stored secrets. Use --vault to keep secrets in an encrypted file
instead of the keyring.`,

		SetFlags: command.Flags(flax.MustBind, &flags),

		Init: func(env *command.Env) error {
			set := &config.Settings{
				Service:   flags.Service,
				Copy:      flags.Copy,
				VaultPath: flags.Vault,
			}
			if flags.Builtin {
				set.Generator = "library"
			}
			if err := set.Load(config.Path()); err != nil {
				return err
			}
			env.Config = set
			return nil
		},

		Commands: append(
			cmdsvc.Commands,
			command.HelpCommand([]command.HelpTopic{{
				Name: "secrets",
				Help: `Accepted secret forms.

The add and update commands accept either a raw Base32 secret
(--secret) or an otpauth:// URL (--url) of the kind encoded in
provisioning QR codes; for a URL, the secret query parameter is
extracted and stored. With neither flag, the secret is read from the
terminal with echo disabled, or from stdin when input is piped.`,
			}}),
			command.VersionCommand(),
		),

		Run: command.Adapt(runGenerate),
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

// runGenerate implements the default generate path.
func runGenerate(env *command.Env) error {
	svc, err := config.Service(env)
	if err != nil {
		return err
	}
	st, err := config.OpenStore(env)
	if err != nil {
		return err
	}
	secret, err := st.Get(svc)
	if errors.Is(err, keystore.ErrNotFound) {
		return fmt.Errorf("service %q is not configured", svc)
	} else if err != nil {
		return err
	}
	gen, err := config.Generator(env)
	if err != nil {
		return err
	}
	code, err := gen.Generate(env.Context(), secret)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	fmt.Println(code)
	if config.Get(env).Copy {
		if err := clipboard.WriteString(code); err != nil {
			return fmt.Errorf("copying code: %w", err)
		}
		fmt.Fprintln(env, "Copied to clipboard")
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtkit/internal/signing"
)

func newKeygenCommand(a *app) *cobra.Command {
	var (
		privateOut string
		publicOut  string
		bits       int
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for RS256, RS384 and RS512",
		Long: `Generate an RSA key pair. The private key is written as PKCS #8 and the
public key as PKIX, both PEM encoded. Without --private-out and --public-out
the pair is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (privateOut == "") != (publicOut == "") {
				return errors.New("--private-out and --public-out must be used together")
			}

			a.logger.WithField("bits", bits).Debug("generating RSA key pair")
			pair, err := signing.GenerateKeyPairSize(bits)
			if err != nil {
				return err
			}

			if privateOut == "" {
				return a.printer().PrintKeyPair(pair)
			}
			if err := writeKeyFile(privateOut, pair.Private, 0o600, force); err != nil {
				return err
			}
			if err := writeKeyFile(publicOut, pair.Public, 0o644, force); err != nil {
				return err
			}
			return a.printer().PrintKeyFiles(privateOut, publicOut)
		},
	}

	cmd.Flags().StringVar(&privateOut, "private-out", "", "file to write the private key to")
	cmd.Flags().StringVar(&publicOut, "public-out", "", "file to write the public key to")
	cmd.Flags().IntVar(&bits, "bits", signing.KeyPairBits, "RSA modulus size in bits")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing key files")
	return cmd
}

func writeKeyFile(path string, data []byte, perm os.FileMode, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return f.Close()
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtkit"
)

func newVerifyCommand(a *app) *cobra.Command {
	var (
		secret  string
		keyFile string
		allowed []string
	)

	cmd := &cobra.Command{
		Use:   "verify <token|->",
		Short: "Verify a token's type, algorithm and signature",
		Long: `Verify a compact token with the given secret or public key. The command
exits non-zero when the token is not valid. Claims such as exp and nbf are
printed but not enforced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readTokenArg(args[0])
			if err != nil {
				return err
			}
			key, err := keyFromFlags(secret, keyFile)
			if err != nil {
				return err
			}
			if len(allowed) > 0 {
				a.cfg.AllowedAlgorithms = allowed
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			f, err := a.factory(nil, key)
			if err != nil {
				return err
			}
			defer f.Close()

			var (
				res     jwtkit.Result
				header  jwtkit.Header
				payload jwtkit.Payload
			)
			tok, err := f.ImportContext(cmd.Context(), token)
			if err != nil {
				res = jwtkit.Result{Reason: jwtkit.ReasonMalformedToken, Err: err}
			} else {
				res = tok.Validate()
				header, payload = tok.Header(), tok.Payload()
			}

			if err := a.printer().PrintValidation(res, header, payload); err != nil {
				return err
			}
			if !res.Valid() {
				return errInvalidToken
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file holding the verification key")
	cmd.Flags().StringSliceVar(&allowed, "allow", nil, "accepted algorithms, repeatable (default from config)")
	return cmd
}

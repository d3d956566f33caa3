package cli

import (
	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtkit"
)

func newDecodeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token|->",
		Short: "Print a token's header and payload without verifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readTokenArg(args[0])
			if err != nil {
				return err
			}
			var opts []jwtkit.TokenOption
			if a.cfg.MaxTokenSize > 0 {
				opts = append(opts, jwtkit.WithMaxTokenSize(a.cfg.MaxTokenSize))
			}
			tok := jwtkit.NewToken(opts...)
			if err := tok.Import(token); err != nil {
				return err
			}
			return a.printer().PrintDecoded(tok.Header(), tok.Payload())
		},
	}
}

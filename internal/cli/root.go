// Package cli implements the jwtctl command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cybergodev/jwtkit"
)

// maxStdinToken bounds how much of stdin is read for a token argument.
const maxStdinToken = 1 << 20

// errInvalidToken makes verify exit non-zero after the result was printed.
var errInvalidToken = errors.New("token is not valid")

type app struct {
	v      *viper.Viper
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	output     string
	verbose    bool

	logger *logrus.Logger
	cfg    jwtkit.Config
}

// NewRootCommand builds the jwtctl command tree. The streams of the returned
// command default to the process streams and can be replaced with SetIn,
// SetOut and SetErr.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "jwtctl",
		Short: "jwtctl - sign, verify and inspect compact tokens",
		Long: `jwtctl signs, verifies and decodes compact tokens (JWT) using
HS256, HS384, HS512, RS256, RS384 or RS512, and generates RSA key pairs.

Configuration is read from --config, ./jwtctl.yaml or
$HOME/.config/jwtctl/jwtctl.yaml, and from JWTCTL_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.in = cmd.InOrStdin()
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is ./jwtctl.yaml)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", string(OutputFormatText), "output format (text, json, yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newKeygenCommand(a),
		newSignCommand(a),
		newVerifyCommand(a),
		newDecodeCommand(a),
		newAlgorithmsCommand(a),
	)
	return root
}

// Execute runs jwtctl with the process arguments and reports failures on
// stderr in the selected output format.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil && !errors.Is(err, errInvalidToken) {
		format, _ := root.PersistentFlags().GetString("output")
		_ = NewPrinter(format, os.Stderr).PrintError(err)
	}
	return err
}

func (a *app) loadConfig() error {
	if _, err := ParseOutputFormat(a.output); err != nil {
		return err
	}

	defaults := jwtkit.DefaultConfig()
	a.v.SetDefault("allowed_algorithms", defaults.AllowedAlgorithms)
	a.v.SetDefault("max_token_size", defaults.MaxTokenSize)
	a.v.SetDefault("warn_weak_keys", defaults.WarnWeakKeys)
	a.v.SetDefault("log_level", defaults.LogLevel)
	a.v.SetDefault("signing_key_file", "")
	a.v.SetDefault("verification_key_file", "")

	a.v.SetEnvPrefix("JWTCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.SetConfigName("jwtctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home + "/.config/jwtctl")
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg jwtkit.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logrus.New()
	a.logger.SetOutput(a.errOut)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.logger.SetLevel(level)
	a.logger.WithField("config", a.v.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

func (a *app) printer() *Printer {
	return NewPrinter(a.output, a.out)
}

// factory builds a Factory from the loaded configuration. Explicit keys
// override the key files named there.
func (a *app) factory(signingKey, verificationKey []byte) (*jwtkit.Factory, error) {
	cfg := a.cfg
	if signingKey != nil {
		cfg.SigningKeyFile = ""
	}
	if verificationKey != nil {
		cfg.VerificationKeyFile = ""
	}

	f, err := jwtkit.New(cfg, jwtkit.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if signingKey != nil {
		if err := f.SetSigningKey(signingKey); err != nil {
			return nil, err
		}
	}
	if verificationKey != nil {
		if err := f.SetVerificationKey(verificationKey); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// keyFromFlags returns the key given by --secret or --key-file, or nil when
// neither was set.
func keyFromFlags(secret, keyFile string) ([]byte, error) {
	switch {
	case secret != "" && keyFile != "":
		return nil, errors.New("--secret and --key-file are mutually exclusive")
	case secret != "":
		return []byte(secret), nil
	case keyFile != "":
		return jwtkit.ReadKeyFile(keyFile)
	default:
		return nil, nil
	}
}

// readTokenArg reads the token argument, or stdin when it is "-".
func (a *app) readTokenArg(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(io.LimitReader(a.in, maxStdinToken))
	if err != nil {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

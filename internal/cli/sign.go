package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cybergodev/jwtkit"
)

type signOptions struct {
	alg        string
	claims     string
	claimsFile string
	header     string
	secret     string
	keyFile    string

	issuer   string
	subject  string
	audience []string
	expires  time.Duration
	iat      bool
	jti      bool
}

func newSignCommand(a *app) *cobra.Command {
	var o signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign claims into a compact token",
		Example: `  jwtctl sign --alg HS256 --secret s3cr3t --claims '{"sub":"1234567890"}'
  jwtctl sign --alg RS256 --key-file private.pem --claims-file claims.yaml --iat --jti --exp 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header, payload, err := o.build(a.in)
			if err != nil {
				return err
			}

			key, err := keyFromFlags(o.secret, o.keyFile)
			if err != nil {
				return err
			}
			f, err := a.factory(key, nil)
			if err != nil {
				return err
			}
			defer f.Close()

			tok, err := f.GenerateContext(cmd.Context(), header, payload)
			if err != nil {
				return err
			}
			a.logger.WithField("alg", tok.Algorithm()).Debug("token signed")
			return a.printer().PrintToken(tok.String())
		},
	}

	cmd.Flags().StringVar(&o.alg, "alg", jwtkit.HS256, "signing algorithm")
	cmd.Flags().StringVar(&o.claims, "claims", "", "claims as a JSON object")
	cmd.Flags().StringVar(&o.claimsFile, "claims-file", "", "file holding claims as JSON or YAML, - for stdin")
	cmd.Flags().StringVar(&o.header, "header", "", "additional header fields as a JSON object")
	cmd.Flags().StringVar(&o.secret, "secret", "", "HMAC secret")
	cmd.Flags().StringVar(&o.keyFile, "key-file", "", "file holding the signing key")
	cmd.Flags().StringVar(&o.issuer, "iss", "", "issuer claim")
	cmd.Flags().StringVar(&o.subject, "sub", "", "subject claim")
	cmd.Flags().StringSliceVar(&o.audience, "aud", nil, "audience claim, repeatable")
	cmd.Flags().DurationVar(&o.expires, "exp", 0, "set the expiration claim this far in the future")
	cmd.Flags().BoolVar(&o.iat, "iat", false, "set the issued-at claim to now")
	cmd.Flags().BoolVar(&o.jti, "jti", false, "set the token ID claim to a random UUID")
	return cmd
}

// build assembles header and payload from the flags. Flag claims override
// claims read from --claims or --claims-file.
func (o *signOptions) build(stdin io.Reader) (jwtkit.Header, jwtkit.Payload, error) {
	if o.claims != "" && o.claimsFile != "" {
		return nil, nil, errors.New("--claims and --claims-file are mutually exclusive")
	}

	payload := jwtkit.Payload{}
	switch {
	case o.claims != "":
		obj, err := parseJSONObject(o.claims)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --claims: %w", err)
		}
		payload = jwtkit.Payload(obj)
	case o.claimsFile != "":
		obj, err := readClaimsFile(o.claimsFile, stdin)
		if err != nil {
			return nil, nil, err
		}
		payload = jwtkit.Payload(obj)
	}

	now := time.Now()
	if o.issuer != "" {
		payload[jwtkit.ClaimIssuer] = o.issuer
	}
	if o.subject != "" {
		payload[jwtkit.ClaimSubject] = o.subject
	}
	if len(o.audience) > 0 {
		payload[jwtkit.ClaimAudience] = jwtkit.ClaimStrings(o.audience)
	}
	if o.expires > 0 {
		payload[jwtkit.ClaimExpiresAt] = jwtkit.NewNumericDate(now.Add(o.expires))
	}
	if o.iat {
		payload[jwtkit.ClaimIssuedAt] = jwtkit.NewNumericDate(now)
	}
	if o.jti {
		payload[jwtkit.ClaimID] = uuid.NewString()
	}

	header := jwtkit.Header{}
	if o.header != "" {
		obj, err := parseJSONObject(o.header)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --header: %w", err)
		}
		header = jwtkit.Header(obj)
	}
	header[jwtkit.HeaderType] = jwtkit.TypeJWT
	header[jwtkit.HeaderAlgorithm] = o.alg

	return header, payload, nil
}

func parseJSONObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not a JSON object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}

func readClaimsFile(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read claims file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var obj map[string]any
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("invalid claims file: %w", err)
		}
		if obj == nil {
			obj = map[string]any{}
		}
		return obj, nil
	default:
		obj, err := parseJSONObject(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, fmt.Errorf("invalid claims file: %w", err)
		}
		return obj, nil
	}
}

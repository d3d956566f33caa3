package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cybergodev/jwtkit"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat checks that s names a known output format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(strings.ToLower(format)),
		writer: writer,
	}
}

// PrintAlgorithms prints the supported algorithm identifiers
func (p *Printer) PrintAlgorithms(algs []string) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{"algorithms": algs})
	case OutputFormatText:
		fmt.Fprintln(p.writer, "Supported Algorithms:")
		for _, alg := range algs {
			fmt.Fprintf(p.writer, "  - %s\n", alg)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyPair prints a PEM key pair
func (p *Printer) PrintKeyPair(pair jwtkit.KeyPair) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{
			"private_key": string(pair.Private),
			"public_key":  string(pair.Public),
		})
	case OutputFormatText:
		_, err := fmt.Fprintf(p.writer, "%s%s", pair.Private, pair.Public)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyFiles reports where a generated key pair was written
func (p *Printer) PrintKeyFiles(privatePath, publicPath string) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{
			"private_key_file": privatePath,
			"public_key_file":  publicPath,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Private key: %s\n", privatePath)
		fmt.Fprintf(p.writer, "Public key:  %s\n", publicPath)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintToken prints a signed compact token
func (p *Printer) PrintToken(token string) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{"token": token})
	case OutputFormatText:
		_, err := fmt.Fprintln(p.writer, token)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintValidation prints the outcome of a verification. header and payload
// may be nil when the token could not be imported.
func (p *Printer) PrintValidation(res jwtkit.Result, header jwtkit.Header, payload jwtkit.Payload) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		out := map[string]any{
			"valid":  res.Valid(),
			"reason": res.Reason.String(),
		}
		if res.Err != nil {
			out["error"] = res.Err.Error()
		}
		if header != nil {
			out["header"] = map[string]any(header)
		}
		if payload != nil {
			out["payload"] = map[string]any(payload)
		}
		return p.printStructured(out)
	case OutputFormatText:
		if res.Valid() {
			fmt.Fprintln(p.writer, "Token is valid")
		} else {
			fmt.Fprintf(p.writer, "Token is NOT valid: %s\n", res.Reason)
			if res.Err != nil {
				fmt.Fprintf(p.writer, "  Error: %v\n", res.Err)
			}
		}
		if header != nil {
			p.printSection("Header", header)
		}
		if payload != nil {
			p.printSection("Payload", payload)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintDecoded prints an unverified token's header and payload
func (p *Printer) PrintDecoded(header jwtkit.Header, payload jwtkit.Payload) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{
			"verified": false,
			"header":   map[string]any(header),
			"payload":  map[string]any(payload),
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, "WARNING: signature not verified")
		p.printSection("Header", header)
		p.printSection("Payload", payload)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]any{"error": err.Error()})
	default:
		_, werr := fmt.Fprintf(p.writer, "Error: %v\n", err)
		return werr
	}
}

func (p *Printer) printSection(title string, m map[string]any) {
	fmt.Fprintf(p.writer, "%s:\n", title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := json.Marshal(m[k])
		if err != nil {
			v = []byte(fmt.Sprint(m[k]))
		}
		fmt.Fprintf(p.writer, "  %s: %s\n", k, v)
	}
}

func (p *Printer) printStructured(v any) error {
	if p.format == OutputFormatYAML {
		return p.printYAML(v)
	}
	return p.printJSON(v)
}

func (p *Printer) printJSON(v any) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printYAML goes through JSON first so json.Number claims come out as YAML
// numbers rather than quoted strings.
func (p *Printer) printYAML(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return err
	}
	return encoder.Close()
}

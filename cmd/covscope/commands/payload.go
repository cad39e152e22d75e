package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/covscope/covscope/internal/payloadgen"
	"github.com/covscope/covscope/pkg/diffscope"
	"github.com/covscope/covscope/pkg/diffscope/schema"
)

// ExitCodeInvalidPayload is the process exit code for a payload that
// fails schema validation, distinct from operational errors.
const ExitCodeInvalidPayload = 2

// embeddedSchemaName is the file name of the embedded payload schema.
const embeddedSchemaName = "payload-schema.json"

var (
	// ErrPayloadInvalid is returned when a payload fails schema validation.
	ErrPayloadInvalid = errors.New("payload failed schema validation")
	// ErrPayloadSourceMissing is returned when neither a repository nor a
	// directory pair is given to payload gen.
	ErrPayloadSourceMissing = errors.New(
		"payload source required (use --repo with --from/--to, or --before with --after)")
	// ErrPayloadSourceAmbiguous is returned when both payload sources are given.
	ErrPayloadSourceAmbiguous = errors.New("choose either --repo or --before/--after, not both")
)

// NewPayloadCommand creates the payload command group.
func NewPayloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Generate or validate diff payloads",
	}

	cmd.AddCommand(newPayloadGenCommand())
	cmd.AddCommand(newPayloadValidateCommand())

	return cmd
}

// payloadGenCommand holds configuration for payload gen.
type payloadGenCommand struct {
	repoPath  string
	fromRev   string
	toRev     string
	beforeDir string
	afterDir  string
	languages []string
	output    string
}

func newPayloadGenCommand() *cobra.Command {
	gc := &payloadGenCommand{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a diff payload from source changes",
		Long: `Generate a diff payload by diffing two revisions of a git repository
(--repo with --from/--to) or two directory trees (--before/--after),
extracting declared methods from every changed source file, and
reporting the methods the changed lines touch.`,
		Args: cobra.NoArgs,
		RunE: gc.run,
	}

	cmd.Flags().StringVar(&gc.repoPath, "repo", "", "git repository to diff")
	cmd.Flags().StringVar(&gc.fromRev, "from", "", "old revision (with --repo)")
	cmd.Flags().StringVar(&gc.toRev, "to", "HEAD", "new revision (with --repo)")
	cmd.Flags().StringVar(&gc.beforeDir, "before", "", "directory tree with the old file versions")
	cmd.Flags().StringVar(&gc.afterDir, "after", "", "directory tree with the new file versions")
	cmd.Flags().StringSliceVar(&gc.languages, "lang", nil, "restrict to these languages (default: all supported)")
	cmd.Flags().StringVarP(&gc.output, "output", "o", "", "payload output file (default: stdout)")

	return cmd
}

func (gc *payloadGenCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := payloadgen.Options{
		Languages:   gc.languages,
		MaxFileSize: int64(cfg.Payload.MaxFileSize),
	}

	if len(opts.Languages) == 0 {
		opts.Languages = cfg.Payload.Languages
	}

	payload, err := gc.generate(cmd, opts)
	if err != nil {
		return err
	}

	progressf(isQuiet(cmd), cmd.ErrOrStderr(), "generated payload: %d units", len(payload))

	writer, closeOutput, err := resolveOutput(cmd, gc.output)
	if err != nil {
		return err
	}

	encodeErr := writePayload(writer, payload)

	closeErr := closeOutput()
	if encodeErr != nil {
		return encodeErr
	}

	return closeErr
}

func (gc *payloadGenCommand) generate(cmd *cobra.Command, opts payloadgen.Options) (diffscope.Payload, error) {
	repoMode := gc.repoPath != ""
	dirMode := gc.beforeDir != "" || gc.afterDir != ""

	switch {
	case repoMode && dirMode:
		return nil, ErrPayloadSourceAmbiguous
	case repoMode:
		return payloadgen.FromRepository(cmd.Context(), gc.repoPath, gc.fromRev, gc.toRev, opts)
	case gc.beforeDir != "" && gc.afterDir != "":
		return payloadgen.FromDirs(cmd.Context(), gc.beforeDir, gc.afterDir, opts)
	default:
		return nil, ErrPayloadSourceMissing
	}
}

func writePayload(writer io.Writer, payload diffscope.Payload) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	encoded = append(encoded, '\n')

	_, writeErr := writer.Write(encoded)
	if writeErr != nil {
		return fmt.Errorf("write payload: %w", writeErr)
	}

	return nil
}

// payloadValidateCommand holds configuration for payload validate.
type payloadValidateCommand struct {
	schemaPath string
	nocolor    bool
}

func newPayloadValidateCommand() *cobra.Command {
	vc := &payloadValidateCommand{}

	cmd := &cobra.Command{
		Use:   "validate <payload.json|->",
		Short: "Validate a diff payload against the payload schema",
		Long: `Validate a diff payload JSON document against the canonical payload
schema.

Examples:
  covscope payload validate changes.json
  covscope payload validate - < changes.json
  covscope payload validate --schema custom-schema.json changes.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return vc.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&vc.schemaPath, "schema", "", "path to a payload JSON schema (default: embedded schema)")
	cmd.Flags().BoolVar(&vc.nocolor, "no-color", false, "disable colored output")

	return cmd
}

func (vc *payloadValidateCommand) run(cmd *cobra.Command, inputPath string) error {
	if vc.nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	out := cmd.OutOrStdout()

	raw, inputLabel, err := loadPayloadInput(cmd, inputPath)
	if err != nil {
		return err
	}

	schemaLoader, err := loadPayloadSchema(vc.schemaPath)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPayloadInvalid, err)
	}

	if !result.Valid() {
		color.New(color.FgRed).Fprintf(out, "payload validation failed (%s)\n", inputLabel)

		for _, verr := range result.Errors() {
			color.New(color.FgYellow).Fprintf(out, "  - %s: %s\n", verr.Field(), verr.Description())
		}

		return ErrPayloadInvalid
	}

	// Schema-valid documents still go through the parser so the exact
	// construction-time semantics are what gets certified.
	payload, parseErr := diffscope.ParsePayload(raw)
	if parseErr != nil {
		color.New(color.FgRed).Fprintf(out, "payload validation failed (%s): %v\n", inputLabel, parseErr)

		return fmt.Errorf("%w: %s", ErrPayloadInvalid, parseErr)
	}

	index := diffscope.NewIndex(payload)

	color.New(color.FgGreen).Fprintf(out, "payload is valid (%s)\n", inputLabel)
	color.New(color.FgGreen).Fprintf(out, "  %d entries, %d units indexed\n", len(payload), index.Len())

	return nil
}

func loadPayloadInput(cmd *cobra.Command, inputPath string) ([]byte, string, error) {
	if inputPath == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return raw, "stdin", nil
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("read payload: %w", err)
	}

	return raw, inputPath, nil
}

func loadPayloadSchema(schemaPath string) (gojsonschema.JSONLoader, error) {
	if schemaPath == "" {
		schemaBytes, err := schema.PayloadSchemaFS.ReadFile(embeddedSchemaName)
		if err != nil {
			return nil, fmt.Errorf("read embedded schema: %w", err)
		}

		return gojsonschema.NewBytesLoader(schemaBytes), nil
	}

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	return gojsonschema.NewBytesLoader(schemaBytes), nil
}

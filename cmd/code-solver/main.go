package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/code-solver/internal/config"
	"github.com/ironsheep/code-solver/internal/decode"
	"github.com/ironsheep/code-solver/internal/logutil"
	"github.com/ironsheep/code-solver/internal/server"
	"github.com/ironsheep/code-solver/internal/solver"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type cliOptions struct {
	configPath string
	jsonOutput bool
	stdin      io.Reader
	stdout     io.Writer
}

type crackOptions struct {
	url    string
	file   string
	screen bool
	region []int
}

type decodeOptions struct {
	mode       string
	disclosure bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args, os.Stdin, os.Stdout)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"code-solver"}
	}

	opts := &cliOptions{stdin: stdin, stdout: stdout}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code-solver",
		Short: "Decode hex-coded text from images",
		Long: `code-solver reads an image, recognizes its text and decodes the
two-character hex tokens it finds through an ASCII table, correcting
common OCR confusions (G/6, S/5, H/4, Z/7, B/8) along the way.

Without a subcommand it runs as an MCP server on stdin/stdout.

Environment variables:
  CODE_SOLVER_LOG_LEVEL=debug    Enable debug logging
  CODE_SOLVER_ENV=<path>         Alternative .env file
  CODE_SOLVER_<SECTION>_<KEY>    Override any setting (e.g. CODE_SOLVER_DECODER_MODE=hex)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.Setup(filepath.Dir(opts.configPath))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to config.ini")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	cmd.AddCommand(
		newServeCmd(opts),
		newCrackCmd(opts),
		newDecodeCmd(opts),
		newResolveCmd(opts),
		newHashPasswordCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts)
		},
	}
}

func runServe(ctx context.Context, opts cliOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer closeStore(store)

	if logutil.DebugEnabled() {
		log.Printf("Code Solver MCP Server v%s (built %s, commit %s), settings %s", Version, BuildTime, GitCommit, store.Path())
	}

	srv := server.New(solver.New(store), Version)
	if err := srv.Serve(ctx, opts.stdin, opts.stdout); err != nil && err != context.Canceled {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newCrackCmd(opts *cliOptions) *cobra.Command {
	co := &crackOptions{}
	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Recognize and decode an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrack(cmd.Context(), *opts, *co)
		},
	}

	cmd.Flags().StringVar(&co.url, "url", "", "Image URL")
	cmd.Flags().StringVar(&co.file, "file", "", "Local image path")
	cmd.Flags().BoolVar(&co.screen, "screen", false, "Capture the primary display")
	cmd.Flags().IntSliceVar(&co.region, "region", nil, "Crop region as x1,y1,x2,y2")
	cmd.MarkFlagsMutuallyExclusive("url", "file", "screen")
	cmd.MarkFlagsOneRequired("url", "file", "screen")

	return cmd
}

func runCrack(ctx context.Context, opts cliOptions, co crackOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var region *solver.Rect
	switch len(co.region) {
	case 0:
	case 4:
		region = &solver.Rect{X1: co.region[0], Y1: co.region[1], X2: co.region[2], Y2: co.region[3]}
	default:
		return fmt.Errorf("--region needs four values, got %d", len(co.region))
	}

	store, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer closeStore(store)
	sv := solver.New(store)

	switch {
	case co.url != "":
		_, err = sv.LoadURL(ctx, co.url)
	case co.file != "":
		_, err = sv.LoadFile(co.file)
	default:
		_, err = sv.CaptureScreen(nil)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", sv.Status().Text, err)
	}

	res, err := sv.Crack(ctx, region)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(opts.stdout, res)
	}
	fmt.Fprintln(opts.stdout, res.Decode.Output)
	return nil
}

func newDecodeCmd(opts *cliOptions) *cobra.Command {
	do := &decodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode [text|-]",
		Short: "Decode hex tokens from text",
		Long:  "Decode hex tokens from the arguments, or from stdin when none are given or the only argument is '-'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, *opts, *do, args)
		},
	}

	cmd.Flags().StringVar(&do.mode, "mode", "", "Output mode: sym, hex, dec, bin or oct (default from settings)")
	cmd.Flags().BoolVar(&do.disclosure, "disclosure", false, "Append the disclosure suffix")
	return cmd
}

func runDecode(cmd *cobra.Command, opts cliOptions, do decodeOptions, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(bufio.NewReader(opts.stdin))
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = string(data)
	}

	store, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer closeStore(store)

	d, err := decoderFor(cmd, store.Settings(), do)
	if err != nil {
		return err
	}

	res := d.Decode(text)
	if opts.jsonOutput {
		return writeJSON(opts.stdout, res)
	}
	fmt.Fprintln(opts.stdout, res.Output)
	return nil
}

// decoderFor applies the decoder settings, then any flags given on the
// command line.
func decoderFor(cmd *cobra.Command, settings config.Settings, do decodeOptions) (*decode.Decoder, error) {
	modeName := settings.Decoder.Mode
	if cmd.Flags().Changed("mode") {
		modeName = do.mode
	}
	mode, err := decode.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	disclosure := settings.Decoder.AppendDisclosure
	if cmd.Flags().Changed("disclosure") {
		disclosure = do.disclosure
	}

	return decode.Default(
		decode.WithMode(mode),
		decode.WithDisclosure(disclosure),
		decode.WithLogf(logutil.Debugf),
	), nil
}

// closeStore writes the settings back on exit.
func closeStore(store *config.Store) {
	if err := store.Close(); err != nil {
		logutil.Errorf("Failed to save settings: %v", err)
	}
}

func newResolveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve TOKEN",
		Short: "Correct and look up a single two-character token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) != 2 {
				return fmt.Errorf("token must be two characters, got %q", args[0])
			}

			res := decode.Default(decode.WithLogf(logutil.Debugf)).Resolve(args[0])
			if opts.jsonOutput {
				return writeJSON(opts.stdout, res)
			}
			if !res.Found {
				return fmt.Errorf("no table entry for %s (tried %s)", args[0], res.Code)
			}
			fmt.Fprintf(opts.stdout, "%s -> %s %q\n", res.Token, res.Code, res.Entry.Symbol)
			return nil
		},
	}
}

func newHashPasswordCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print the bcrypt hash for admin.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := config.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.stdout, hash)
			return nil
		},
	}
}

func newVersionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "code-solver %s\n", Version)
			fmt.Fprintf(opts.stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(opts.stdout, "  Git commit: %s\n", GitCommit)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

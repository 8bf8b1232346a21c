package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gopdfctl/gopdf"
	"github.com/s0up4200/gopdfctl/pdfinfo"
	"github.com/s0up4200/gopdfctl/sink"
)

var (
	convertFlags  conversionFlags
	convertOutput string
	convertPreset string
	convertSink   string
	convertCheck  bool
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <url|html|->",
	Short: "Convert a URL or HTML document to PDF",
	Long: `Convert a URL or raw HTML to PDF. Pass "-" to read HTML from stdin.

Without --output the PDF is written to stdout. With --filename the service
hosts the document and its descriptor is printed instead.`,
	Example: `  gopdfctl convert https://example.com -o example.pdf
  gopdfctl convert https://example.com --margin 1cm --footer-source '<p>{{page}}</p>' -o out.pdf
  gopdfctl convert '<h1>Hi</h1>' --filename hi.pdf
  cat page.html | gopdfctl convert - --preset invoice --sink gcs -o invoices/may.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output key or path (default stdout)")
	convertCmd.Flags().StringVarP(&convertPreset, "preset", "p", "", "apply a preset from config before other flags")
	convertCmd.Flags().StringVar(&convertSink, "sink", "", "override output.sink (file, azure or gcs)")
	convertCmd.Flags().BoolVar(&convertCheck, "inspect", false, "validate the PDF and log its metadata")
	convertFlags.register(convertCmd.Flags())
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	req := client.NewRequest()
	if convertPreset != "" {
		options, err := cfg.Preset(convertPreset)
		if err != nil {
			return err
		}
		req.Apply(options)
	}
	if err := convertFlags.apply(req, cmd.Flags()); err != nil {
		return err
	}

	res, err := req.Convert(ctx, source)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if res.IsHosted() {
		return printHosted(cmd.OutOrStdout(), res.HostedFile())
	}

	if convertCheck {
		info, err := pdfinfo.Inspect(res.Bytes(), convertFlags.userPassword)
		if err != nil {
			logger.Warn().Err(err).Msg("Converted document failed validation")
		} else {
			logger.Info().
				Int("pages", info.Pages).
				Str("version", info.Version).
				Bool("encrypted", info.Encrypted).
				Msg("Converted document is valid")
		}
	}

	outputCfg := cfg.Output
	if convertSink != "" {
		outputCfg.Sink = convertSink
	}

	if convertOutput == "" && (outputCfg.Sink == "" || outputCfg.Sink == "file") {
		_, err := res.WriteTo(cmd.OutOrStdout())
		return err
	}

	location, err := store(ctx, outputCfg.Sink, convertOutput, res)
	if err != nil {
		return err
	}

	logger.Info().
		Str("location", location).
		Int("bytes", res.Len()).
		Msg("Document saved")
	return nil
}

// readSource returns arg, or stdin when arg is "-"
func readSource(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read source from stdin: %w", err)
	}
	return string(data), nil
}

func printHosted(w io.Writer, file gopdf.HostedFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// store writes res through the configured sink kind
func store(ctx context.Context, kind, key string, res *gopdf.Result) (string, error) {
	outputCfg := cfg.Output
	outputCfg.Sink = kind

	s, err := sink.New(ctx, outputCfg, logger)
	if err != nil {
		return "", fmt.Errorf("failed to open %s sink: %w", kind, err)
	}
	defer s.Close()

	return s.Put(ctx, sink.Key(key), res.Reader(), sink.ContentTypePDF)
}

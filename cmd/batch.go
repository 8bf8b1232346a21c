package cmd

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/s0up4200/gopdfctl/config"
	"github.com/s0up4200/gopdfctl/filter"
	"github.com/s0up4200/gopdfctl/gopdf"
	"github.com/s0up4200/gopdfctl/sink"
)

var (
	batchFilter      string
	batchConcurrency int
	batchSink        string
	batchDryRun      bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Convert every job listed in a manifest",
	Long: `Convert the jobs listed in a YAML manifest concurrently.

Each job has a source and may name a preset, extra options, an output key and
tags. A filter expression selects a subset of jobs, for example:

  hasTag("invoice") and IsURL
  hasPrefix(Name, "report-") and option("landscape") == true
  Name startsWith "report-" and not containsFold(Source, "draft")

hasPrefix, hasSuffix and containsFold ignore case. The infix operators
startsWith, endsWith and contains are case sensitive.`,
	Example: `  gopdfctl batch jobs.yaml
  gopdfctl batch jobs.yaml --filter 'hasTag("monthly")' --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFilter, "filter", "f", "", "filter expression selecting jobs")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "conversions in flight (default batch.concurrency)")
	batchCmd.Flags().StringVar(&batchSink, "sink", "", "override output.sink (file, azure or gcs)")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "list the selected jobs without converting")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	jobs, err := loadManifest(args[0])
	if err != nil {
		return err
	}

	jobs, err = planJobs(jobs, cfg.Presets)
	if err != nil {
		return err
	}

	if batchFilter != "" {
		f, err := filter.NewCompiler().Compile(batchFilter)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		jobs, err = f.Select(jobs)
		if err != nil {
			return err
		}
		logger.Info().Str("filter", batchFilter).Int("selected", len(jobs)).Msg("Filtered jobs")
	}

	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs to convert.")
		return nil
	}

	if batchDryRun {
		printPlan(cmd, jobs)
		return nil
	}

	limit := cfg.Batch.Concurrency
	if batchConcurrency > 0 {
		limit = batchConcurrency
	}

	outputCfg := cfg.Output
	if batchSink != "" {
		outputCfg.Sink = batchSink
	}

	s, err := sink.New(ctx, outputCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s sink: %w", outputCfg.Sink, err)
	}
	defer s.Close()

	result := client.BatchConvert(ctx, jobs, limit, storeJob(s))

	fmt.Fprintf(cmd.OutOrStdout(), "\nConverted %d/%d jobs\n", len(result.Successful), result.Requested)
	if len(result.Failed) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Failed:")
		for _, jobErr := range result.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  • %s: %v\n", jobErr.Job.Name, jobErr.Err)
		}
		return fmt.Errorf("%d of %d jobs failed", len(result.Failed), result.Requested)
	}
	return nil
}

// loadManifest reads the jobs list from a YAML, JSON or TOML manifest
func loadManifest(path string) ([]gopdf.Job, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	var jobs []gopdf.Job
	if err := v.UnmarshalKey("jobs", &jobs); err != nil {
		return nil, fmt.Errorf("error unmarshaling manifest: %w", err)
	}
	return jobs, nil
}

// planJobs names unnamed jobs and folds preset options under each job's own options
func planJobs(jobs []gopdf.Job, presets config.PresetConfig) ([]gopdf.Job, error) {
	planned := make([]gopdf.Job, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))

	for i, job := range jobs {
		if strings.TrimSpace(job.Source) == "" {
			return nil, fmt.Errorf("job %d has no source", i+1)
		}

		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("duplicate job name: %s", job.Name)
		}
		seen[job.Name] = true

		options := make(map[string]any)
		if job.Preset != "" {
			preset, ok := presets[strings.ToLower(job.Preset)]
			if !ok {
				return nil, fmt.Errorf("job %s: unknown preset: %s", job.Name, job.Preset)
			}
			maps.Copy(options, preset)
		}
		maps.Copy(options, job.Options)
		job.Options = options

		planned = append(planned, job)
	}

	return planned, nil
}

func storeJob(s sink.Sink) gopdf.StoreFunc {
	return func(ctx context.Context, job gopdf.Job, res *gopdf.Result) error {
		if res.IsHosted() {
			logger.Info().
				Str("job", job.Name).
				Interface("file", res.HostedFile()).
				Msg("Document hosted")
			return nil
		}

		location, err := s.Put(ctx, sink.Key(job.Output), res.Reader(), sink.ContentTypePDF)
		if err != nil {
			return err
		}

		logger.Debug().Str("job", job.Name).Str("location", location).Msg("Document saved")
		return nil
	}
}

func printPlan(cmd *cobra.Command, jobs []gopdf.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%d jobs selected:\n", len(jobs))
	fmt.Fprintln(out, strings.Repeat("-", 80))

	for _, job := range jobs {
		fmt.Fprintf(out, "• %s\n", job.Name)
		fmt.Fprintf(out, "  Source: %s\n", truncate(job.Source, 70))
		if job.Output != "" {
			fmt.Fprintf(out, "  Output: %s\n", job.Output)
		}
		if len(job.Tags) > 0 {
			fmt.Fprintf(out, "  Tags: %s\n", strings.Join(job.Tags, ", "))
		}
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

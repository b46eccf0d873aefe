package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imgx-dev/imgx/internal/batch"
	"github.com/imgx-dev/imgx/internal/codec"
	"github.com/imgx-dev/imgx/internal/config"
	"github.com/imgx-dev/imgx/internal/discover"
	"github.com/imgx-dev/imgx/internal/history"
	"github.com/imgx-dev/imgx/internal/publish"
	"github.com/imgx-dev/imgx/internal/report"
	"github.com/imgx-dev/imgx/internal/sysinfo"
	"github.com/imgx-dev/imgx/internal/telemetry"
	"github.com/imgx-dev/imgx/pkg/api"
)

// Resolve configuration for a command
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	return config.Load(cfgPath)
}

// Convert files to a target format
func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [files or directories]",
		Short: "Convert images to a target format with bounded parallelism",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			spec := api.ConvertSpec{
				Inputs:      args,
				Format:      cfg.Defaults.Format,
				Quality:     cfg.Defaults.Quality,
				OutputDir:   cfg.Defaults.OutputDir,
				Recursive:   cfg.Defaults.Recursive,
				Concurrency: cfg.Defaults.Concurrency,
			}
			if specPath, _ := cmd.Flags().GetString("spec"); specPath != "" {
				if err := loadSpec(specPath, &spec); err != nil {
					return err
				}
				spec.Inputs = append(spec.Inputs, args...)
			}
			applyFlagOverrides(cmd, &spec)
			if len(spec.Inputs) == 0 {
				return fmt.Errorf("no inputs given")
			}

			quiet, _ := cmd.Flags().GetBool("quiet")
			asJSON, _ := cmd.Flags().GetBool("json")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			memoryPerItemMB, _ := cmd.Flags().GetInt("memory-per-item")
			if !cmd.Flags().Changed("memory-per-item") {
				memoryPerItemMB = cfg.Defaults.MemoryPerItemMB
			}
			doPublish, _ := cmd.Flags().GetBool("publish")

			reg := codec.Builtin()
			if _, err := reg.Encoder(spec.Format); err != nil {
				return err
			}

			files, err := discover.Files(spec.Inputs, discover.Options{
				Extensions: reg.Extensions(),
				Pattern:    spec.Pattern,
				Recursive:  spec.Recursive,
			})
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("no matching image files found")
				return nil
			}

			probe := sysinfo.Host{}
			concurrency := spec.Concurrency
			if concurrency <= 0 {
				concurrency = batch.Recommend(len(files), batch.Sizing{
					MemoryPerItem: uint64(memoryPerItemMB) << 20,
					Probe:         probe,
				})
			}

			metrics := telemetry.NewCollector(true, log.Logger)
			opts := codec.Options{
				Format:    spec.Format,
				Quality:   spec.Quality,
				OutputDir: spec.OutputDir,
				Overwrite: spec.Overwrite,
			}
			runCfg := batch.Config[codec.Result]{
				Concurrency: concurrency,
				Probe:       probe,
				Timeout:     timeout,
			}
			if !quiet {
				runCfg = batch.Observe(runCfg, report.ProgressLogger{Log: log.Logger})
			}

			started := time.Now()
			res, err := batch.Run(cmd.Context(), batch.MakeItems(files),
				func(ctx context.Context, item batch.Item) (codec.Result, error) {
					return reg.Convert(ctx, item.Path, opts)
				}, runCfg)
			if err != nil {
				return err
			}

			metrics.Gauge("convert.concurrency", float64(concurrency), nil)
			metrics.Count("convert.success", float64(res.Successful), map[string]string{"format": spec.Format})
			metrics.Count("convert.failure", float64(res.Failed), map[string]string{"format": spec.Format})
			metrics.Time("convert.duration", time.Since(started), nil)
			metrics.Flush()

			summary := report.Build(history.NewRunID(), spec.Format, started, time.Since(started), res)
			if cfg.History.Enabled {
				if err := recordRun(cmd, cfg, summary); err != nil {
					log.Warn().Err(err).Msg("could not record run history")
				}
			}

			if asJSON {
				if err := summary.RenderJSON(os.Stdout); err != nil {
					return err
				}
			} else if err := summary.Render(os.Stdout); err != nil {
				return err
			}

			if doPublish && res.Successful > 0 {
				outputs := make([]string, 0, len(res.Results))
				for _, r := range res.Results {
					outputs = append(outputs, r.OutputPath)
				}
				if err := pushOutputs(cmd, cfg, outputs, concurrency); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("to", "t", "", "target format (png, jpeg, gif, bmp, tiff)")
	cmd.Flags().Int("quality", 0, "quality for lossy targets, 1-100")
	cmd.Flags().StringP("out", "o", "", "output directory (default: alongside sources)")
	cmd.Flags().String("pattern", "", "glob matched against base names, e.g. 'scan-*.png'")
	cmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	cmd.Flags().IntP("concurrency", "c", 0, "max conversions in flight (default: derived from host and workload)")
	cmd.Flags().Int("memory-per-item", 0, "estimated MiB used per in-flight conversion, caps concurrency")
	cmd.Flags().Duration("timeout", 0, "per-file timeout, e.g. 30s (0 disables)")
	cmd.Flags().Bool("overwrite", false, "replace existing output files")
	cmd.Flags().Bool("json", false, "print the summary as JSON")
	cmd.Flags().BoolP("quiet", "q", false, "suppress per-file progress logging")
	cmd.Flags().Bool("publish", false, "upload converted files to the configured remote")
	cmd.Flags().String("spec", "", "YAML job spec file")
	return cmd
}

func loadSpec(path string, spec *api.ConvertSpec) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}
	if err := yaml.Unmarshal(content, spec); err != nil {
		return fmt.Errorf("parse spec: %w", err)
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, spec *api.ConvertSpec) {
	if cmd.Flags().Changed("to") {
		spec.Format, _ = cmd.Flags().GetString("to")
	}
	if cmd.Flags().Changed("quality") {
		spec.Quality, _ = cmd.Flags().GetInt("quality")
	}
	if cmd.Flags().Changed("out") {
		spec.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("pattern") {
		spec.Pattern, _ = cmd.Flags().GetString("pattern")
	}
	if cmd.Flags().Changed("recursive") {
		spec.Recursive, _ = cmd.Flags().GetBool("recursive")
	}
	if cmd.Flags().Changed("concurrency") {
		spec.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("overwrite") {
		spec.Overwrite, _ = cmd.Flags().GetBool("overwrite")
	}
	spec.Format = strings.ToLower(spec.Format)
}

func recordRun(cmd *cobra.Command, cfg config.Config, summary report.Summary) error {
	path := cfg.HistoryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	store, err := history.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(cmd.Context(), summary)
}

func pushOutputs(cmd *cobra.Command, cfg config.Config, paths []string, concurrency int) error {
	up, err := uploaderFromConfig(cfg)
	if err != nil {
		return err
	}
	res, err := up.Push(cmd.Context(), paths, concurrency)
	if err != nil {
		return err
	}
	fmt.Printf("published %d/%d files to %s\n", res.Successful, res.Total, cfg.Publish.Host)
	return nil
}

func uploaderFromConfig(cfg config.Config) (*publish.Uploader, error) {
	return publish.New(publish.Target{
		Host:       cfg.Publish.Host,
		Port:       cfg.Publish.Port,
		User:       cfg.Publish.User,
		KeyPath:    cfg.Publish.KeyPath,
		KnownHosts: cfg.Publish.KnownHosts,
		RemoteDir:  cfg.Publish.RemoteDir,
		Timeout:    time.Duration(cfg.Publish.TimeoutSeconds) * time.Second,
		Retries:    cfg.Publish.Retries,
	}, log.Logger)
}

// Show supported formats
func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "Show readable extensions and writable formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := codec.Builtin()
			fmt.Printf("read:  %s\n", strings.Join(reg.Extensions(), " "))
			fmt.Printf("write: %s\n", strings.Join(reg.Formats(), " "))
			return nil
		},
	}
}

// List recent runs
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := history.NewStore(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("%s\t%s\t%s\t%d/%d ok\t%s\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Format,
					r.Successful, r.Total, r.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "max runs to list")
	return cmd
}

// Upload files to the configured remote
func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [files]",
		Short: "Upload files to the configured remote over SFTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if concurrency <= 0 {
				concurrency = batch.Recommend(len(args), batch.Sizing{Probe: sysinfo.Host{}})
			}
			return pushOutputs(cmd, cfg, args, concurrency)
		},
	}
	cmd.Flags().IntP("concurrency", "c", 0, "max uploads in flight")
	return cmd
}

// Initialize configuration
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file. Run this the first time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				cfgPath = config.DefaultPath()
			}
			wrote, err := config.WriteDefault(cfgPath)
			if err != nil {
				return err
			}
			if wrote {
				fmt.Printf("wrote default config to %s\n", cfgPath)
			} else {
				fmt.Printf("config already exists at %s\n", cfgPath)
			}
			return nil
		},
	}
}

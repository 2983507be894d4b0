package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/avivsinai/thread-triage/internal/metrics"
	"github.com/avivsinai/thread-triage/internal/thread"
)

type anonymizeFlags struct {
	input       string
	output      string
	keepHTML    bool
	sortByTime  bool
	strict      bool
	sentinel    string
	mask        []string
	metricsFile string
}

func (f *anonymizeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.input, "input", "", "Chat export JSON (required)")
	fs.StringVar(&f.output, "output", "", "Where to write the threads JSON (required)")
	fs.BoolVar(&f.keepHTML, "keep-html", false, "Keep markup in body.content")
	fs.BoolVar(&f.sortByTime, "sort-by-time", false, "Order messages and threads by createdDateTime")
	fs.BoolVar(&f.strict, "strict", false, "Fail on records without a conversation id (default: skip with a warning)")
	fs.StringVar(&f.sentinel, "sentinel", thread.DefaultSentinel, "Replacement for display names")
	fs.StringArrayVar(&f.mask, "mask", nil, "Extra field path to mask, e.g. from.user.id (repeatable)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here")
}

// options merges config values under the flags the user actually set.
func (f *anonymizeFlags) options(a *app, fs *pflag.FlagSet) (thread.Options, error) {
	if err := requireFlag("input", f.input); err != nil {
		return thread.Options{}, err
	}
	if err := requireFlag("output", f.output); err != nil {
		return thread.Options{}, err
	}
	if samePath(f.input, f.output) {
		return thread.Options{}, UsageError("--output must differ from --input")
	}

	cfg := a.cfg.Anonymize
	opts := thread.Options{
		KeepHTML:   cfg.KeepHTML,
		SortByTime: cfg.SortByTime,
		Strict:     cfg.Strict,
		Sentinel:   cfg.Sentinel,
		MaskPaths:  append([]string(nil), cfg.MaskPaths...),
	}
	if fs.Changed("keep-html") {
		opts.KeepHTML = f.keepHTML
	}
	if fs.Changed("sort-by-time") {
		opts.SortByTime = f.sortByTime
	}
	if fs.Changed("strict") {
		opts.Strict = f.strict
	}
	if fs.Changed("sentinel") {
		opts.Sentinel = f.sentinel
	}
	if fs.Changed("mask") {
		opts.MaskPaths = append(opts.MaskPaths, f.mask...)
	}
	if opts.Sentinel == "" {
		return thread.Options{}, UsageError("--sentinel must not be empty")
	}
	return opts, nil
}

func newAnonymizeCmd(a *app) *cobra.Command {
	var flags anonymizeFlags
	cmd := &cobra.Command{
		Use:   "anonymize",
		Short: "Group messages into threads and mask author names",
		Long: `Groups the records of a chat export by conversation id, replaces every
author display name with a sentinel and reduces message bodies to plain text.

Input is a JSON object with a "messages" array (or a bare array of records).
Output is a JSON array of {"thread_id", "messages"} objects.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a, cmd.Flags())
			if err != nil {
				return err
			}
			n, err := a.anonymize(flags.input, flags.output, flags.metricsFile, opts)
			if err != nil {
				return err
			}
			return a.printf("Wrote %d threads to %s\n", n, flags.output)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// anonymize runs one input-to-output pass and returns the thread count.
func (a *app) anonymize(input, output, metricsFile string, opts thread.Options) (int, error) {
	data, err := readInput(input)
	if err != nil {
		return 0, err
	}
	records, err := format.DecodeRecords(data)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", input, err)
	}

	rec := metrics.New("anonymize")
	rec.RecordsRead(len(records))
	opts.OnSkip = func(index int, r format.Record) {
		rec.RecordSkipped()
		a.logger.Warn("skipping record without conversation id",
			zap.Int("index", index),
			zap.String("id", r.ID()))
	}

	threads, err := thread.Group(records, opts)
	if err != nil {
		return 0, err
	}
	if err := writeDocument(output, threads); err != nil {
		return 0, err
	}
	rec.Threads(len(threads))
	if err := rec.WriteFile(metricsFile); err != nil {
		a.logger.Warn("failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
	}

	a.logger.Info("anonymized export",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("records", len(records)),
		zap.Int("threads", len(threads)))
	return len(threads), nil
}

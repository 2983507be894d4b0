package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avivsinai/thread-triage/internal/classify"
	"github.com/avivsinai/thread-triage/internal/config"
	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/avivsinai/thread-triage/internal/metrics"
)

func newClassifyCmd(a *app) *cobra.Command {
	var (
		input       string
		output      string
		provider    string
		model       string
		baseURL     string
		apiKeyEnv   string
		interval    time.Duration
		timeout     time.Duration
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify each thread as an incident with a completion model",
		Long: `Reads the output of "triage anonymize" and asks the configured model for
Incident Number, Root Cause, Type (Restart/Error) and Severity (High/Med/Low)
of every thread, one request per thread. A failed request yields a record
with empty fields and an "error" message; the run continues.

The API key is read from OPENAI_API_KEY (openai) or GEMINI_API_KEY (gemini),
or from the variable named by --api-key-env.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("input", input); err != nil {
				return err
			}
			if err := requireFlag("output", output); err != nil {
				return err
			}
			if samePath(input, output) {
				return UsageError("--output must differ from --input")
			}

			cfg := a.cfg.Classify
			fs := cmd.Flags()
			if fs.Changed("provider") {
				if provider != classify.ProviderOpenAI && provider != classify.ProviderGemini {
					return UsageError("--provider must be %s or %s", classify.ProviderOpenAI, classify.ProviderGemini)
				}
				cfg.Provider = provider
			}
			if fs.Changed("model") {
				cfg.Model = model
			}
			if fs.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if fs.Changed("api-key-env") {
				cfg.APIKeyEnv = apiKeyEnv
			}
			callTimeout, err := cfg.TimeoutDuration()
			if err != nil {
				return err
			}
			pace, err := cfg.IntervalDuration()
			if err != nil {
				return err
			}
			if fs.Changed("timeout") {
				if timeout <= 0 {
					return UsageError("--timeout must be > 0")
				}
				callTimeout = timeout
			}
			if fs.Changed("interval") {
				if interval < 0 {
					return UsageError("--interval must be >= 0")
				}
				pace = interval
			}

			return a.classify(cmd, classifyRun{
				input:       input,
				output:      output,
				cfg:         cfg,
				timeout:     callTimeout,
				interval:    pace,
				metricsFile: metricsFile,
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&input, "input", "", "Threads JSON from triage anonymize (required)")
	fs.StringVar(&output, "output", "", "Where to write the classifications JSON (required)")
	fs.StringVar(&provider, "provider", classify.ProviderOpenAI, "Model provider: openai or gemini")
	fs.StringVar(&model, "model", "", "Model name (default gpt-4.1-mini / gemini-2.5-flash)")
	fs.StringVar(&baseURL, "base-url", "", "API base URL (default https://api.openai.com/v1 for openai)")
	fs.StringVar(&apiKeyEnv, "api-key-env", "", "Environment variable holding the API key")
	fs.DurationVar(&interval, "interval", 0, "Minimum time between requests")
	fs.DurationVar(&timeout, "timeout", classify.DefaultCallTimeout, "Timeout per request")
	fs.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here")
	return cmd
}

type classifyRun struct {
	input       string
	output      string
	cfg         config.ClassifyConfig
	timeout     time.Duration
	interval    time.Duration
	metricsFile string
}

func (a *app) classify(cmd *cobra.Command, run classifyRun) error {
	ctx := cmd.Context()
	apiKey, err := run.cfg.APIKey(os.Getenv)
	if err != nil {
		return err
	}

	data, err := readInput(run.input)
	if err != nil {
		return err
	}
	threads, err := format.DecodeThreads(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", run.input, err)
	}

	runID := format.NewRunID()
	logger := a.logger.With(zap.String("run_id", runID), zap.String("provider", run.cfg.Provider))
	completer, err := classify.NewCompleter(ctx, classify.ProviderConfig{
		Provider:  run.cfg.Provider,
		Model:     run.cfg.Model,
		BaseURL:   run.cfg.BaseURL,
		APIKey:    apiKey,
		RequestID: runID,
	})
	if err != nil {
		return err
	}

	rec := metrics.New("classify")
	rec.Threads(len(threads))
	runner := &classify.Runner{
		Classifier: &classify.ModelClassifier{Completer: completer, SystemPrompt: run.cfg.SystemPrompt},
		Limiter:    classify.NewLimiter(run.interval),
		Timeout:    run.timeout,
		Logger:     logger,
		OnResult: func(res classify.Result) {
			outcome := metrics.OutcomeOK
			if res.Err != nil {
				outcome = metrics.OutcomeFallback
			}
			rec.Classified(outcome, res.Elapsed)
		},
	}

	logger.Info("classifying threads", zap.Int("threads", len(threads)), zap.String("input", run.input))
	results, err := runner.Run(ctx, threads)
	if err != nil {
		return fmt.Errorf("classification interrupted: %w", err)
	}
	if err := writeDocument(run.output, results); err != nil {
		return err
	}
	if err := rec.WriteFile(run.metricsFile); err != nil {
		logger.Warn("failed to write metrics", zap.String("path", run.metricsFile), zap.Error(err))
	}
	return a.printf("Wrote %d classifications to %s\n", len(results), run.output)
}

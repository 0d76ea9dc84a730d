package commands

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerflow/internal/accounts"
	"github.com/cleared-dev/ledgerflow/internal/config"
	"github.com/cleared-dev/ledgerflow/internal/ledger"
	"github.com/cleared-dev/ledgerflow/internal/logging"
	"github.com/cleared-dev/ledgerflow/internal/pipeline"
	"github.com/cleared-dev/ledgerflow/internal/records"
	"github.com/cleared-dev/ledgerflow/internal/rejectlog"
)

type processOptions struct {
	configPath           string
	workers              int
	rejections           string
	logLevel             string
	noWithdrawalDisputes bool
}

// resolveConfig loads the config file and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command, opts processOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Processing.Workers = opts.workers
	}
	if flags.Changed("rejections") {
		cfg.Output.Rejections = opts.rejections
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("no-withdrawal-disputes") {
		cfg.Engine.DisputeWithdrawals = !opts.noWithdrawalDisputes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	return f, nil
}

func runProcess(cmd *cobra.Command, input string, opts processOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Environment: logging.Environment(cfg.Log.Environment),
		Level:       cfg.Log.Level,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer in.Close()

	var report *rejectlog.Writer
	if cfg.Output.Rejections != "" {
		f, err := os.Create(cfg.Output.Rejections)
		if err != nil {
			return fmt.Errorf("creating rejection report: %w", err)
		}
		defer f.Close()
		report = rejectlog.NewWriter(f)
	}

	engine := ledger.NewEngine(
		ledger.WithScale(cfg.Engine.Scale),
		ledger.WithWithdrawalDisputes(cfg.Engine.DisputeWithdrawals),
	)

	logger.Debug("processing transactions",
		zap.String("input", input),
		zap.Int("workers", cfg.Processing.Workers),
		zap.Int32("scale", cfg.Engine.Scale),
		zap.Bool("dispute_withdrawals", cfg.Engine.DisputeWithdrawals),
	)

	var (
		reportMu  sync.Mutex
		reportErr error
	)
	onReject := func(r pipeline.Rejection) {
		logger.Warn("record skipped", logging.RejectionFields(r)...)
		if report == nil {
			return
		}
		err := report.Write(rejectlog.Entry{
			Line:   r.Line,
			Kind:   r.Record.Kind,
			Client: r.Record.Client,
			Tx:     r.Record.Tx,
			Reason: string(r.Reason),
			Detail: logging.Detail(r.Err),
		})
		if err != nil {
			reportMu.Lock()
			if reportErr == nil {
				reportErr = err
			}
			reportMu.Unlock()
		}
	}

	res, err := pipeline.Run(cmd.Context(), records.NewReader(in, cfg.Engine.Scale), engine, pipeline.Options{
		Workers:  cfg.Processing.Workers,
		OnReject: onReject,
	})
	if err != nil {
		return fmt.Errorf("processing %s: %w", input, err)
	}

	snapshot := engine.Snapshot()
	for _, v := range ledger.CheckInvariants(snapshot) {
		logger.Error("account invariant violated",
			zap.Uint16("client", uint16(v.Client)),
			zap.Int("invariant", v.Invariant),
			zap.String("detail", v.Description),
		)
	}

	if err := accounts.WriteSummary(cmd.OutOrStdout(), snapshot, cfg.Engine.Scale); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if report != nil {
		if reportErr != nil {
			return fmt.Errorf("writing rejection report: %w", reportErr)
		}
		if err := report.Flush(); err != nil {
			return fmt.Errorf("writing rejection report: %w", err)
		}
	}

	logging.LogSummary(logger, res, engine.Stats(), len(snapshot))
	return nil
}

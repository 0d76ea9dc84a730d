// Package logging builds the diagnostic logger. Diagnostics never share a
// stream with the account summary.
package logging

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/ledgerflow/internal/ledger"
	"github.com/cleared-dev/ledgerflow/internal/pipeline"
	"github.com/cleared-dev/ledgerflow/internal/records"
)

// Environment selects the encoder profile.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// Config contains logger initialization inputs.
type Config struct {
	Environment Environment
	Level       string
}

// New creates a logger writing to w. Every entry carries a run_id so
// interleaved runs can be told apart.
func New(cfg Config, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	switch cfg.Environment {
	case EnvironmentDevelopment:
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	case EnvironmentProduction, "":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		return nil, fmt.Errorf("invalid log environment %q", cfg.Environment)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).With(zap.String("run_id", uuid.NewString())), nil
}

// RejectionFields describes a skipped record.
func RejectionFields(r pipeline.Rejection) []zap.Field {
	fields := []zap.Field{
		zap.Int("line", r.Line),
		zap.String("reason", string(r.Reason)),
	}
	if r.Record.Kind != "" {
		fields = append(fields,
			zap.String("type", string(r.Record.Kind)),
			zap.Uint16("client", uint16(r.Record.Client)),
			zap.Uint32("tx", uint32(r.Record.Tx)),
		)
	}
	if detail := Detail(r.Err); detail != "" {
		fields = append(fields, zap.String("detail", detail))
	}
	return fields
}

// Detail returns the human-readable part of a rejection error, without the
// record coordinates already carried in separate fields.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var re *ledger.RejectionError
	if errors.As(err, &re) {
		return re.Detail
	}
	var me *records.MalformedError
	if errors.As(err, &me) {
		return me.Detail
	}
	return err.Error()
}

// LogSummary logs end-of-run counters.
func LogSummary(logger *zap.Logger, res pipeline.Result, stats ledger.Stats, accounts int) {
	fields := []zap.Field{
		zap.Int("read", res.Read),
		zap.Int("applied", res.Applied),
		zap.Int("rejected", res.Rejected),
		zap.Int("malformed", res.Malformed),
		zap.Int("accounts", accounts),
	}
	for kind, n := range stats.Applied {
		fields = append(fields, zap.Int("applied_"+string(kind), n))
	}
	for reason, n := range stats.Rejected {
		fields = append(fields, zap.Int("rejected_"+string(reason), n))
	}
	logger.Info("run complete", fields...)
}

// Package pipeline feeds a stream of transaction records into an applier,
// optionally fanning out across workers partitioned by client.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledgerflow/internal/ledger"
	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/records"
)

const defaultQueueSize = 256

// Source yields records in input order and io.EOF when exhausted.
type Source interface {
	Next() (model.TransactionRecord, error)
}

// Applier applies a single record.
type Applier interface {
	Apply(rec model.TransactionRecord) error
}

// Rejection describes a record that was skipped.
type Rejection struct {
	Record model.TransactionRecord // zero value for malformed rows
	Line   int
	Reason ledger.Reason
	Err    error
}

// Options controls a Run.
type Options struct {
	// Workers is the number of goroutines applying records. Values below 2
	// apply records sequentially on the calling goroutine.
	Workers int
	// QueueSize is the buffer of each worker's queue.
	QueueSize int
	// OnReject is called for every skipped record. With more than one
	// worker it is called concurrently.
	OnReject func(Rejection)
}

// Result counts the records seen by a Run.
type Result struct {
	Read      int
	Applied   int
	Rejected  int
	Malformed int
}

func (r *Result) add(o Result) {
	r.Read += o.Read
	r.Applied += o.Applied
	r.Rejected += o.Rejected
	r.Malformed += o.Malformed
}

// Run drains src into applier. Malformed rows and rejected records are
// reported through OnReject and never stop the run; only source I/O errors
// and context cancellation do.
func Run(ctx context.Context, src Source, applier Applier, opts Options) (Result, error) {
	if opts.OnReject == nil {
		opts.OnReject = func(Rejection) {}
	}
	if opts.Workers < 2 {
		return runSequential(ctx, src, applier, opts)
	}
	return runPartitioned(ctx, src, applier, opts)
}

func runSequential(ctx context.Context, src Source, applier Applier, opts Options) (Result, error) {
	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		res.Read++
		if err != nil {
			if !reportMalformed(err, opts.OnReject) {
				return res, fmt.Errorf("reading records: %w", err)
			}
			res.Malformed++
			continue
		}

		if applyOne(applier, rec, opts.OnReject) {
			res.Applied++
		} else {
			res.Rejected++
		}
	}
}

func runPartitioned(ctx context.Context, src Source, applier Applier, opts Options) (Result, error) {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	g, gctx := errgroup.WithContext(ctx)

	queues := make([]chan model.TransactionRecord, opts.Workers)
	results := make([]Result, opts.Workers)
	for i := range queues {
		queues[i] = make(chan model.TransactionRecord, size)
		g.Go(func() error {
			for rec := range queues[i] {
				if applyOne(applier, rec, opts.OnReject) {
					results[i].Applied++
				} else {
					results[i].Rejected++
				}
			}
			return nil
		})
	}

	// Records for one client always land on the same queue, which keeps
	// their relative order.
	var dispatched Result
	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		for {
			rec, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			dispatched.Read++
			if err != nil {
				if !reportMalformed(err, opts.OnReject) {
					return fmt.Errorf("reading records: %w", err)
				}
				dispatched.Malformed++
				continue
			}

			select {
			case queues[int(rec.Client)%len(queues)] <- rec:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	err := g.Wait()

	res := dispatched
	for _, r := range results {
		res.add(r)
	}
	return res, err
}

func applyOne(applier Applier, rec model.TransactionRecord, onReject func(Rejection)) bool {
	err := applier.Apply(rec)
	if err == nil {
		return true
	}
	reason, _ := ledger.ReasonOf(err)
	onReject(Rejection{Record: rec, Line: rec.Line, Reason: reason, Err: err})
	return false
}

func reportMalformed(err error, onReject func(Rejection)) bool {
	var me *records.MalformedError
	if !errors.As(err, &me) {
		return false
	}
	onReject(Rejection{Line: me.Line, Reason: ledger.ReasonMalformedRecord, Err: err})
	return true
}

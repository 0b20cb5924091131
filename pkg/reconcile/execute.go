package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-listsync/pkg/store"
)

// OpKind labels the operation a Result settled.
type OpKind string

const (
	OpDelete OpKind = "delete"
	OpUpload OpKind = "upload"
)

// Result is the settled outcome of one attachment operation. A failed item
// records its error and never blocks siblings.
type Result struct {
	Op         OpKind
	Name       string
	Err        error
	Attachment store.Attachment
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Option customises an Executor.
type Option func(*Executor)

// WithInterval sets the minimum gap between consecutive operations. Zero
// disables pacing, which tests rely on for determinism.
func WithInterval(d time.Duration) Option {
	return func(e *Executor) {
		if d <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

const defaultInterval = 150 * time.Millisecond

// Executor drives a Plan against a store, strictly sequentially: deletes
// first, then uploads, one in flight at a time so the remote endpoint is
// never hammered and failure attribution stays unambiguous.
type Executor struct {
	store   store.Store
	limiter *rate.Limiter
}

// NewExecutor constructs an Executor with the default pacing interval.
func NewExecutor(s store.Store, opts ...Option) (*Executor, error) {
	if s == nil {
		return nil, errors.New("reconcile: store is required")
	}
	e := &Executor{
		store:   s,
		limiter: rate.NewLimiter(rate.Every(defaultInterval), 1),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e, nil
}

// Run executes the plan for the given item. Each item's failure is captured
// in its Result and does not abort later operations; Run itself only fails
// when the context ends. Once started, the loop runs to completion rather
// than being abortable between siblings of the same save.
func (e *Executor) Run(ctx context.Context, list string, itemID int, plan Plan) ([]Result, error) {
	if ctx == nil {
		return nil, errors.New("reconcile: context is required")
	}

	results := make([]Result, 0, len(plan.Deletes)+len(plan.Uploads))

	for _, name := range plan.Deletes {
		if err := e.pace(ctx); err != nil {
			return results, err
		}
		res := Result{Op: OpDelete, Name: name}
		if err := e.store.DeleteAttachment(ctx, list, itemID, name); err != nil {
			res.Err = fmt.Errorf("reconcile: delete %s: %w", name, err)
		}
		results = append(results, res)
	}

	for _, att := range plan.Uploads {
		if err := e.pace(ctx); err != nil {
			return results, err
		}
		res := Result{Op: OpUpload, Name: att.Name}
		stored, err := e.store.UploadAttachment(ctx, list, itemID, att.PendingFile, att.Name)
		if err != nil {
			res.Err = fmt.Errorf("reconcile: upload %s: %w", att.Name, err)
		} else {
			res.Attachment = stored
		}
		results = append(results, res)
	}

	return results, nil
}

func (e *Executor) pace(ctx context.Context) error {
	if e.limiter == nil {
		return ctx.Err()
	}
	return e.limiter.Wait(ctx)
}

// Failed filters the settled results down to the failures.
func Failed(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

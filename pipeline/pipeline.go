// Package pipeline runs the linear resolve, build, invoke, normalize and sink steps of a sample
// and applies one failure policy to all of them. A configuration error or a cancelled context
// stops the run. Every other failure is logged with its kind and the provider's message, the
// affected invocation yields no result, and the run continues with the next input.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/metrics"
	"github.com/gurre/cloud-api-samples/sink"
)

// Options configures a Runner.
type Options struct {
	Logger   *zap.Logger
	Sink     sink.Sink // nil for runs that only print, emitting then fails
	Out      io.Writer // console results, defaults to os.Stdout
	Progress io.Writer // spinner output, nil disables the spinner
	Command  string
	RunID    string // generated when empty
}

// Runner carries the collaborators shared by the steps of one run.
// Steps run sequentially; a Runner is not meant for concurrent use.
type Runner struct {
	log      *zap.Logger
	metrics  *metrics.Metrics
	sink     sink.Sink
	out      io.Writer
	progress io.Writer
	command  string
	runID    string
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		log:      opts.Logger,
		metrics:  metrics.NewMetrics(),
		sink:     opts.Sink,
		out:      opts.Out,
		progress: opts.Progress,
		command:  opts.Command,
		runID:    opts.RunID,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.runID == "" {
		r.runID = NewRunID()
	}
	r.log = r.log.With(zap.String("runId", r.runID), zap.String("command", r.command))
	return r
}

// NewRunID returns a fresh run id.
func NewRunID() string { return uuid.NewString() }

// RunID identifies the run in logs and remote sinks.
func (r *Runner) RunID() string { return r.runID }

// Logger returns the run-scoped logger.
func (r *Runner) Logger() *zap.Logger { return r.log }

// Metrics returns the run counters.
func (r *Runner) Metrics() *metrics.Metrics { return r.metrics }

// Out returns the console writer.
func (r *Runner) Out() io.Writer { return r.out }

// Invoke performs one provider call. ok is false when the call failed; err is non-nil only when
// the failure must stop the run.
// Example:
//
//	labels, ok, err := pipeline.Invoke(ctx, r, "rekognition.DetectLabels", func(ctx context.Context) ([]imaging.Label, error) {
//	    return rek.Labels(ctx, req)
//	})
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    continue
//	}
func Invoke[T any](ctx context.Context, r *Runner, op string, fn func(context.Context) (T, error)) (T, bool, error) {
	start := time.Now()
	v, err := fn(ctx)
	r.metrics.RecordCall(time.Since(start))
	if err != nil {
		var zero T
		return zero, false, r.fail(ctx, op, err)
	}
	r.metrics.RecordSuccess()
	return v, true, nil
}

// Prepare runs a local step such as reading an input file or building a request. It follows the
// same policy as Invoke but does not count as a provider call.
func Prepare[T any](ctx context.Context, r *Runner, op string, fn func() (T, error)) (T, bool, error) {
	v, err := fn()
	if err != nil {
		var zero T
		return zero, false, r.fail(ctx, op, err)
	}
	return v, true, nil
}

// Check applies the failure policy to err. It returns a non-nil error only when the run must
// stop; otherwise the failure is logged and counted as a skipped invocation.
func (r *Runner) Check(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	return r.fail(ctx, op, err)
}

func (r *Runner) fail(ctx context.Context, op string, err error) error {
	err = apierr.Classify(op, err)
	kind := apierr.KindOf(err)
	r.metrics.RecordFailure(kind)

	if kind == apierr.KindConfiguration {
		r.log.Error("configuration error, stopping", zap.String("op", op), zap.Error(err))
		return err
	}
	if ctx.Err() != nil {
		r.log.Warn("run cancelled", zap.String("op", op), zap.Error(err))
		return err
	}

	r.metrics.RecordSkipped()
	r.log.Warn("step failed, skipping",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	return nil
}

// Emit writes artifacts to the sink. Sink failures are logged and counted; Emit reports whether
// every artifact was written.
func (r *Runner) Emit(ctx context.Context, artifacts ...sink.Artifact) bool {
	ok := true
	for _, a := range artifacts {
		if err := r.write(ctx, a); err != nil {
			ok = false
			kind := apierr.KindOf(err)
			r.metrics.RecordFailure(kind)
			r.log.Warn("failed to write artifact",
				zap.String("artifact", a.Name),
				zap.Stringer("kind", kind),
				zap.Error(err),
			)
			continue
		}
		r.metrics.RecordArtifact(len(a.Body))
		r.log.Debug("artifact written", zap.String("artifact", a.Name), zap.Int("bytes", len(a.Body)))
	}
	return ok
}

func (r *Runner) write(ctx context.Context, a sink.Artifact) error {
	if r.sink == nil {
		return apierr.Configf("pipeline.Emit", "no sink configured for %s", a.Name)
	}
	return r.sink.Write(ctx, a)
}

// EmitJSON encodes v and writes it as one artifact.
func (r *Runner) EmitJSON(ctx context.Context, name string, v any) bool {
	a, err := sink.JSON(name, v)
	if err != nil {
		r.metrics.RecordFailure(apierr.KindShape)
		r.log.Warn("failed to encode artifact", zap.String("artifact", name), zap.Error(err))
		return false
	}
	return r.Emit(ctx, a)
}

// Printf writes console output.
func (r *Runner) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Println writes one console line.
func (r *Runner) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Track shows a spinner with label until the returned function is called.
func (r *Runner) Track(label string) func() {
	if r.progress == nil {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.progress))
	s.Suffix = " " + label
	s.Start()
	return s.Stop
}

// Finish logs the run report and, when reportName is set, writes it through the sink.
func (r *Runner) Finish(ctx context.Context, reportName string) metrics.Report {
	report := r.metrics.GenerateReport(r.runID, r.command)
	r.log.Info("run finished",
		zap.Int64("calls", report.Calls),
		zap.Int64("succeeded", report.Succeeded),
		zap.Int64("skipped", report.Skipped),
		zap.Int64("artifacts", report.Artifacts),
		zap.Any("failures", report.Failures),
		zap.Duration("duration", report.Duration),
	)
	if reportName != "" {
		r.EmitJSON(ctx, reportName, report)
	}
	return report
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

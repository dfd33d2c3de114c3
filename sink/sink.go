package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// Sink persists artifacts.
// Example:
//
//	s := sink.NewFileSink("results")
//	a, _ := sink.JSON("objects_labels.json", labels)
//	if err := s.Write(ctx, a); err != nil {
//	    log.Fatal(err)
//	}
type Sink interface {
	Write(ctx context.Context, a Artifact) error
}

// FileSink writes artifacts below a root directory, creating parent directories on demand.
type FileSink struct {
	root string
}

// NewFileSink creates a FileSink rooted at dir. The directory is created on first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{root: filepath.Clean(dir)}
}

// Root returns the directory artifacts are written to.
func (f *FileSink) Root() string { return f.root }

// Write creates or overwrites root/name.
func (f *FileSink) Write(ctx context.Context, a Artifact) error {
	const op = "sink.FileSink.Write"
	if err := ValidateName(a.Name); err != nil {
		return apierr.New(apierr.KindLocalIO, op, err)
	}
	p := filepath.Join(f.root, filepath.FromSlash(a.Name))

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return apierr.New(apierr.KindLocalIO, op, fmt.Errorf("failed to create directory: %w", err))
	}
	if err := os.WriteFile(p, a.Body, 0644); err != nil {
		return apierr.New(apierr.KindLocalIO, op, fmt.Errorf("failed to write %s: %w", p, err))
	}
	return nil
}

// ConsoleSink prints text artifacts and a one-line note for binary ones.
type ConsoleSink struct {
	w      io.Writer
	render func(string) (string, error)
}

// NewConsoleSink creates a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// NewMarkdownConsoleSink creates a ConsoleSink that renders plain-text artifacts as markdown.
// The label and phrase listings are markdown lists, so they render as such in a terminal.
func NewMarkdownConsoleSink(w io.Writer) (*ConsoleSink, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &ConsoleSink{w: w, render: r.Render}, nil
}

// Write prints the artifact.
func (c *ConsoleSink) Write(ctx context.Context, a Artifact) error {
	if !a.IsText() {
		_, err := fmt.Fprintf(c.w, "%s (%d bytes, %s)\n", a.Name, len(a.Body), a.ContentType)
		return err
	}

	body := string(a.Body)
	if c.render != nil && a.ContentType == ContentTypeText {
		if out, err := c.render(body); err == nil {
			body = out
		}
	}
	if _, err := fmt.Fprintf(c.w, "== %s ==\n%s", a.Name, body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err := fmt.Fprintln(c.w)
		return err
	}
	return nil
}

// Tee writes every artifact to all sinks in order. Each sink receives the artifact once even
// when an earlier sink failed.
type Tee []Sink

// Write implements Sink.
func (t Tee) Write(ctx context.Context, a Artifact) error {
	var errs []error
	for _, s := range t {
		if err := s.Write(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (t Tee) Close() error {
	var errs []error
	for _, s := range t {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Deps supplies what Open needs for remote sinks. Clients are built lazily so a file sink never
// requires AWS credentials.
type Deps struct {
	ResultsDir string
	Console    io.Writer
	RunID      string
	S3         func() (aws.S3Client, error)
	DynamoDB   func() (aws.DynamoDBClient, error)
	Postgres   func(ctx context.Context, dsn string) (Execer, io.Closer, error)
}

// Open returns the sink for uri. An empty uri selects a FileSink below deps.ResultsDir.
func Open(ctx context.Context, uri string, deps Deps) (Sink, error) {
	const op = "sink.Open"
	if uri == "" {
		return NewFileSink(deps.ResultsDir), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, apierr.Configf(op, "invalid sink URI: %v", err)
	}

	switch u.Scheme {
	case "file":
		dir := u.Host + u.Path
		if dir == "" {
			dir = deps.ResultsDir
		}
		return NewFileSink(dir), nil
	case "console":
		w := deps.Console
		if w == nil {
			w = os.Stdout
		}
		switch render := u.Query().Get("render"); render {
		case "", "plain":
			return NewConsoleSink(w), nil
		case "markdown":
			c, err := NewMarkdownConsoleSink(w)
			if err != nil {
				return nil, apierr.Configf(op, "%v", err)
			}
			return c, nil
		default:
			return nil, apierr.Configf(op, "unsupported console rendering %q", render)
		}
	case "s3":
		if deps.S3 == nil {
			return nil, apierr.Configf(op, "no S3 client available for %s", uri)
		}
		client, err := deps.S3()
		if err != nil {
			return nil, err
		}
		return NewS3Sink(client, uri)
	case "dynamodb":
		if deps.DynamoDB == nil {
			return nil, apierr.Configf(op, "no DynamoDB client available for %s", uri)
		}
		client, err := deps.DynamoDB()
		if err != nil {
			return nil, err
		}
		return NewDynamoDBSink(client, uri, deps.RunID)
	case "postgres", "postgresql":
		if deps.Postgres == nil {
			return nil, apierr.Configf(op, "no database opener available for %s", u.Redacted())
		}
		db, closer, err := deps.Postgres(ctx, uri)
		if err != nil {
			return nil, err
		}
		return NewPostgresSink(db, closer, deps.RunID), nil
	default:
		return nil, apierr.Configf(op, "unsupported sink scheme %q", u.Scheme)
	}
}

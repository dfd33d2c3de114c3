// Package apierr classifies failures of a sample invocation into a small closed set of kinds.
// Every error surfaced by the resolvers, builders, invokers and sinks is either already an
// *Error or is turned into one by Classify, so callers can decide whether to abort the process
// or skip the dependent steps of one invocation.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind is the category of a failure.
type Kind int

const (
	// KindUnknown is reported for nil errors only.
	KindUnknown Kind = iota
	// KindConfiguration marks missing or invalid credentials, identifiers or parameters.
	// It is raised before any network activity.
	KindConfiguration
	// KindLocalIO marks a missing input file or an unwritable output location.
	KindLocalIO
	// KindProvider marks a non-success answer from the remote API.
	KindProvider
	// KindTransport marks network failures, timeouts and unreachable endpoints.
	KindTransport
	// KindShape marks a response that lacks a field the normalizer requires.
	KindShape
)

// Kinds lists every classified kind in a stable order.
var Kinds = []Kind{KindConfiguration, KindLocalIO, KindProvider, KindTransport, KindShape}

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindLocalIO:
		return "local-io"
	case KindProvider:
		return "provider"
	case KindTransport:
		return "transport"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Err keeps the original error so the provider's own message
// stays available and errors.As still reaches SDK error types.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configf returns a configuration error with a formatted message.
func Configf(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Err: fmt.Errorf(format, args...)}
}

// LocalIOf returns a local I/O error with a formatted message.
func LocalIOf(op, format string, args ...any) error {
	return &Error{Kind: KindLocalIO, Op: op, Err: fmt.Errorf(format, args...)}
}

// Shapef returns a response-shape error with a formatted message.
func Shapef(op, format string, args ...any) error {
	return &Error{Kind: KindShape, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of err, classifying it on the fly when it is not an *Error yet.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(Classify("", err), &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify wraps err into an *Error. Errors that are already classified keep their kind;
// op is only applied to errors that were not classified before.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	return &Error{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}

	// Send failures must be checked before APIError: the SDK wraps both in an OperationError.
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return KindTransport
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return KindProvider
	}

	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return KindProvider
	}

	// gRPC clients report refused connections and expired deadlines as status codes.
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return KindTransport
		default:
			return KindProvider
		}
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return KindLocalIO
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindLocalIO
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindTransport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}

	return KindProvider
}

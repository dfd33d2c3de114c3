package main

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/aws"
)

const (
	// WarmupSource identifies scheduled warmup events.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the self-invocations to land on
	// other instances.
	WarmupDelay = 75 * time.Millisecond

	// MaxWarmupConcurrency caps the self-invocations of one warmup event.
	MaxWarmupConcurrency = 10
)

// WarmupEvent is the payload of a scheduled warmup.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is returned for warmup events.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a warmup event.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var w WarmupEvent
	if err := json.Unmarshal(event, &w); err != nil || w.Source != WarmupSource {
		return nil, false
	}
	w.Concurrency = min(max(w.Concurrency, 0), MaxWarmupConcurrency)
	return &w, true
}

// Warmer answers warmup events and keeps additional instances warm by invoking the function
// asynchronously.
type Warmer struct {
	client       aws.LambdaClient
	functionName string
	delay        time.Duration
	log          *zap.Logger
}

// NewWarmer creates a Warmer invoking functionName through client.
func NewWarmer(client aws.LambdaClient, functionName string, log *zap.Logger) *Warmer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Warmer{client: client, functionName: functionName, delay: WarmupDelay, log: log}
}

// Handle warms up to MaxWarmupConcurrency additional instances. A nil Warmer only counts
// itself.
func (w *Warmer) Handle(ctx context.Context, ev *WarmupEvent) WarmupResponse {
	resp := WarmupResponse{Status: "warm", InstancesWarmed: 1}
	if w == nil {
		return resp
	}
	count := min(ev.Concurrency, MaxWarmupConcurrency)
	if count > 0 && w.client != nil && w.functionName != "" {
		if err := w.selfInvoke(ctx, count); err != nil {
			w.log.Warn("warmup self-invocation failed", zap.Int("concurrency", count), zap.Error(err))
		} else {
			resp.InstancesWarmed += count
		}
	}
	time.Sleep(w.delay)
	return resp
}

// selfInvoke queues count asynchronous invocations one after another. Event invocations return
// as soon as they are queued, so the instances still start side by side.
func (w *Warmer) selfInvoke(ctx context.Context, count int) error {
	// Children get concurrency 0 so they do not invoke further.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		_, err := w.client.Invoke(ctx, &lambdasdk.InvokeInput{
			FunctionName:   sdkaws.String(w.functionName),
			InvocationType: types.InvocationTypeEvent,
			Payload:        payload,
		})
		if err != nil {
			return fmt.Errorf("invocation %d of %d: %w", i+1, count, err)
		}
	}
	return nil
}

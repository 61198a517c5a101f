// Package pipeline provides the bounded-channel stage runtime that wires the
// sampler, detector and comparator into one ordered, backpressured stream.
//
// Every stage runs as a single goroutine pulling its upstream channel
// strictly in order and pushing to a bounded downstream channel. A full
// downstream channel suspends the stage, which transitively throttles every
// upstream producer; total in-flight memory is bounded by the sum of queue
// capacities. The first error, upstream or local, is wrapped with the stage
// name, emitted as the last item, and closes the stream.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// DefaultQueueDepth is the per-stage bounded queue capacity.
const DefaultQueueDepth = 4

// Result carries either a stream item or the terminal error of the stream.
// A stream contains at most one Result with a non-nil Err, always as its
// last item.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a stream item.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a terminal stream error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// emit pushes r downstream, suspending while the queue is full. It returns
// false when the context is cancelled, which callers treat as normal
// termination.
func emit[T any](ctx context.Context, out chan<- Result[T], r Result[T]) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- r:
		return true
	}
}

// Stage turns a transform function into a pipeline stage. fn is applied to
// every upstream item in order by one worker goroutine; its first error, or
// the first upstream error, terminates the output stream.
func Stage[In, Out any](ctx context.Context, name string, in <-chan Result[In], depth int, fn func(In) (Out, error)) <-chan Result[Out] {
	return FilterStage(ctx, name, in, depth, func(item In) (Out, bool, error) {
		out, err := fn(item)
		return out, err == nil, err
	})
}

// FilterStage is Stage for transforms that may drop items: fn returns
// ok = false to consume an item without emitting anything downstream.
func FilterStage[In, Out any](ctx context.Context, name string, in <-chan Result[In], depth int, fn func(In) (Out, bool, error)) <-chan Result[Out] {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	out := make(chan Result[Out], depth)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item, open := <-in:
				if !open {
					return
				}
				if item.Err != nil {
					emit(ctx, out, Fail[Out](fmt.Errorf("%s stage: upstream: %w", name, item.Err)))
					return
				}
				value, keep, err := fn(item.Value)
				if err != nil {
					emit(ctx, out, Fail[Out](fmt.Errorf("%s stage: %w", name, err)))
					return
				}
				if !keep {
					continue
				}
				if !emit(ctx, out, Ok(value)) {
					return
				}
			}
		}
	}()

	return out
}

// SourceStream pulls frames from src until end of stream, error, or
// cancellation, turning the pull-based Source into the pipeline's first
// stream. io.EOF is the clean end and produces no error item.
func SourceStream(ctx context.Context, src video.Source, depth int) <-chan Result[*video.Frame] {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	out := make(chan Result[*video.Frame], depth)

	go func() {
		defer close(out)
		for {
			frame, err := src.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				emit(ctx, out, Fail[*video.Frame](fmt.Errorf("source: %w", err)))
				return
			}
			if !emit(ctx, out, Ok(frame)) {
				return
			}
		}
	}()

	return out
}

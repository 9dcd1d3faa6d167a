// Package sections folds independent sub-queries of an aggregate response.
// A failing section degrades to an empty value instead of failing the
// response; the failure is logged and counted.
package sections

import (
	"context"
	"reflect"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/metrics"
)

const (
	ReasonMissingTable = "missing_table"
	ReasonQueryError   = "query_error"
)

// Result is one section of an aggregate. Degraded sections carry the empty
// value of T and the reason they fell back.
type Result[T any] struct {
	Value    T      `json:"value"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Load runs fn and folds its error into the Result. Cancellation of ctx by
// the client is reported the same way as any other failure.
func Load[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err == nil {
		if isNil(v) {
			v = empty[T]()
		}
		return Result[T]{Value: v}
	}

	reason := ReasonQueryError
	if db.IsUndefinedTable(err) {
		reason = ReasonMissingTable
	}
	metrics.DegradedSectionsTotal.WithLabelValues(name, reason).Inc()
	zerolog.Ctx(ctx).Warn().Err(err).Str("section", name).Str("reason", reason).Msg("section degraded")

	return Result[T]{Value: empty[T](), Degraded: true, Reason: reason}
}

// empty returns a non-nil empty slice or map for collection types, so they
// render as [] or {}, and the zero value otherwise.
func empty[T any]() T {
	var zero T
	switch t := reflect.TypeOf(zero); {
	case t == nil:
		return zero
	case t.Kind() == reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface().(T)
	case t.Kind() == reflect.Map:
		return reflect.MakeMap(t).Interface().(T)
	}
	return zero
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// Into returns a task that loads a section into dst, for use with Collect.
func Into[T any](dst *Result[T], name string, fn func(context.Context) (T, error)) func(context.Context) {
	return func(ctx context.Context) {
		*dst = Load(ctx, name, fn)
	}
}

// Collect runs tasks concurrently and waits for all of them. Tasks never fail
// each other: each writes its own Result.
func Collect(ctx context.Context, tasks ...func(context.Context)) {
	var g errgroup.Group
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

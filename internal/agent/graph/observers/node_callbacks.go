package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

type startKey struct{ node string }

type retryKey struct{ node string }

// newNodeHandler tracks recipe graph nodes. Only events carrying a
// *model.RecipeState are counted.
func newNodeHandler(m *Metrics) einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			s, ok := input.(*model.RecipeState)
			if !ok {
				return ctx
			}
			ctx = context.WithValue(ctx, startKey{info.Name}, time.Now())
			return context.WithValue(ctx, retryKey{info.Name}, s.RetryCount)
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			s, ok := output.(*model.RecipeState)
			if !ok {
				return ctx
			}
			outcome := "ok"
			if s.Failed() {
				outcome = "failed"
			}
			elapsed := observeNode(ctx, m, info.Name, outcome)
			if before, ok := ctx.Value(retryKey{info.Name}).(int); ok && m != nil && s.RetryCount > before {
				m.Retries.Add(float64(s.RetryCount - before))
			}

			logx.Debug().
				Str("session_id", s.SessionID).
				Str("node", info.Name).
				Str("outcome", outcome).
				Dur("elapsed", elapsed).
				Msg("node finished")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			observeNode(ctx, m, info.Name, "error")
			logx.Error().Err(err).Str("node", info.Name).Msg("node error")
			return ctx
		}).
		Build()
}

// newGraphHandler records the outcome of every completed run.
func newGraphHandler(m *Metrics) einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			s, ok := output.(*model.RecipeState)
			if !ok {
				return ctx
			}
			outcome := "clarification"
			if s.Succeeded() {
				outcome = "recipe"
			}
			if m != nil {
				m.RunOutcomes.WithLabelValues(outcome, s.ErrorKind.String()).Inc()
				m.CostUSD.Add(s.TotalCostUSD)
			}
			logx.Info().
				Str("session_id", s.SessionID).
				Str("graph", info.Name).
				Str("outcome", outcome).
				Stringer("error_kind", s.ErrorKind).
				Int("retries", s.RetryCount).
				Float64("cost_usd", s.TotalCostUSD).
				Msg("recipe run finished")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("graph", info.Name).Msg("recipe run aborted")
			return ctx
		}).
		Build()
}

func observeNode(ctx context.Context, m *Metrics, node, outcome string) time.Duration {
	var elapsed time.Duration
	if start, ok := ctx.Value(startKey{node}).(time.Time); ok {
		elapsed = time.Since(start)
	}
	if m != nil {
		m.NodeRuns.WithLabelValues(node, outcome).Inc()
		m.NodeDuration.WithLabelValues(node).Observe(elapsed.Seconds())
	}
	return elapsed
}

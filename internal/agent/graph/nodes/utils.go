package nodes

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

const defaultRetryInterval = 500 * time.Millisecond

// retryPolicy bounds how often a failing collaborator call is repeated.
type retryPolicy struct {
	maxRetries int
	interval   time.Duration
}

func newRetryPolicy(cfg model.AgentConfig) retryPolicy {
	p := retryPolicy{maxRetries: cfg.MaxRetries, interval: cfg.RetryInterval}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.interval <= 0 {
		p.interval = defaultRetryInterval
	}
	return p
}

// do runs fn until it succeeds, the retries are used up or ctx ends.
// Every retry is counted in state.RetryCount.
func (p retryPolicy) do(ctx context.Context, state *model.RecipeState, step model.Step, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.interval
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.maxRetries)), ctx)
	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		state.RetryCount++
		logx.Warn().
			Err(err).
			Str("session_id", state.SessionID).
			Str("node", string(step)).
			Int("retry", state.RetryCount).
			Dur("wait", wait).
			Msg("collaborator call failed, retrying")
	})
}

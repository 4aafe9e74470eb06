package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/infra/metrics"
)

// Retry policy for transient store failures. Configured once at startup;
// reads are retried with exponential backoff bounded by these values.
type retryPolicy struct {
	attempts int
	baseWait time.Duration
}

var (
	policyMu sync.RWMutex
	policy   = retryPolicy{attempts: 3, baseWait: 100 * time.Millisecond}
)

// SetRetryPolicy overrides the package retry policy (call from main).
func SetRetryPolicy(attempts int, baseWait time.Duration) {
	policyMu.Lock()
	defer policyMu.Unlock()
	if attempts > 0 {
		policy.attempts = attempts
	}
	if baseWait > 0 {
		policy.baseWait = baseWait
	}
}

func currentPolicy() retryPolicy {
	policyMu.RLock()
	defer policyMu.RUnlock()
	return policy
}

// classifyStoreErr maps driver errors onto the domain error kinds.
// Domain errors and context errors pass through untouched. SQLSTATE
// classes 08 (connection), 53 (resources), 57 (operator intervention)
// plus serialization/deadlock failures are transient; everything else
// from the server is terminal.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, de := range []error{domain.ErrNotFound, domain.ErrInvalidArgument,
		domain.ErrAlreadyExists, domain.ErrFreeQuotaExceeded, domain.ErrInvalidExecContext} {
		if errors.Is(err, de) {
			return err
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case strings.HasPrefix(code, "08"),
			strings.HasPrefix(code, "53"),
			strings.HasPrefix(code, "57"),
			code == "40001", code == "40P01":
			return fmt.Errorf("sqlstate %s: %w", code, domain.ErrStoreUnavailable)
		default:
			return fmt.Errorf("sqlstate %s (%s): %w", code, pgErr.Message, domain.ErrStoreFailure)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%v: %w", err, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%v: %w", err, domain.ErrStoreFailure)
}

// withRetry runs fn, retrying transient store failures with exponential
// backoff. The context bounds the whole loop; non-transient errors
// surface immediately.
func withRetry(ctx context.Context, op string, fn func() error) error {
	pol := currentPolicy()
	wait := pol.baseWait
	var err error
	for attempt := 0; attempt < pol.attempts; attempt++ {
		if attempt > 0 {
			metrics.IncDBRetry(op)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		err = classifyStoreErr(fn())
		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
	}
	return fmt.Errorf("%s: retries exhausted: %w", op, err)
}

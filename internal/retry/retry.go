// Package retry holds the backoff policy and failure classification used
// by the action queue.
package retry

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"

	"eduplanner/studysync/internal/domain"
)

// Class is the outcome of classifying an executor failure.
type Class int

const (
	// None means there was no failure.
	None Class = iota
	// Transient failures are retried with backoff.
	Transient
	// Terminal failures purge the action immediately.
	Terminal
)

func (c Class) String() string {
	switch c {
	case None:
		return "none"
	case Transient:
		return "retryable"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Policy controls the backoff window between attempts of one action.
type Policy struct {
	// BaseDelay is the unit of the exponential delay, base * 2^retryCount.
	// An action's first failure sets retryCount to 1, so the first
	// window is 2 * BaseDelay.
	BaseDelay time.Duration
	// MaxDelay caps the exponential component.
	MaxDelay time.Duration
	// Jitter is the fraction of the computed delay added as jitter, in [0, 1).
	Jitter float64
}

// DefaultPolicy returns the policy used by the generic action lane.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay: 2 * time.Second,
		MaxDelay:  5 * time.Minute,
		Jitter:    0.3,
	}
}

// Delay returns min(base * 2^retryCount, max) without jitter.
func (p Policy) Delay(retryCount int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if retryCount < 0 {
		retryCount = 0
	}

	delay := p.BaseDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Window returns the full backoff window for an action: the capped
// exponential delay plus jitter proportional to it. The jitter fraction
// is derived from key so the window is stable between checks of the same
// action while still spreading different actions (and clients) apart.
func (p Policy) Window(key string, retryCount int) time.Duration {
	delay := p.Delay(retryCount)
	if delay <= 0 || p.Jitter <= 0 {
		return delay
	}
	return delay + time.Duration(float64(delay)*p.Jitter*unitFraction(key))
}

// Eligible reports whether an action last attempted at lastAttempt may be
// attempted again at now. Actions that were never attempted are always
// eligible.
func (p Policy) Eligible(key string, retryCount int, lastAttempt *time.Time, now time.Time) bool {
	if lastAttempt == nil {
		return true
	}
	return now.Sub(*lastAttempt) >= p.Window(key, retryCount)
}

// NextAttempt returns when an action becomes eligible again. The zero
// time means it is eligible now.
func (p Policy) NextAttempt(key string, retryCount int, lastAttempt *time.Time) time.Time {
	if lastAttempt == nil {
		return time.Time{}
	}
	return lastAttempt.Add(p.Window(key, retryCount))
}

// unitFraction maps key to a value in [0, 1).
func unitFraction(key string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return float64(h.Sum64()>>11) / float64(uint64(1)<<53)
}

// Classify decides whether err is worth another attempt. Executors should
// return *domain.ExecError with an explicit flag; anything else falls back
// to IsRetryable.
func Classify(err error) Class {
	if err == nil {
		return None
	}
	var execErr *domain.ExecError
	if errors.As(err, &execErr) {
		if execErr.Retryable {
			return Transient
		}
		return Terminal
	}
	if IsRetryable(err) {
		return Transient
	}
	return Terminal
}

// IsRetryable determines whether an unstructured error is likely a
// transport failure. It is a heuristic, not an exhaustive list.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

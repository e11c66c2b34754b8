// Package resolver turns user-supplied recipient strings into canonical
// addresses. Literal hex addresses resolve synchronously; name-style
// identifiers go through an external name-resolution service with a
// debounce so keystroke-driven callers issue at most one lookup per quiet
// period and stale responses are never applied.
package resolver

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/payflow-hq/payflow-engine/pkg/debounce"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/metrics"
)

// addressPattern is the strict 40-hex-digit, 0x-prefixed address shape.
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether input is a literal hex address.
func IsAddress(input string) bool {
	return addressPattern.MatchString(input)
}

// IsNameLike reports whether input should be treated as a name-style
// identifier (contains a dot and is not a literal address).
func IsNameLike(input string) bool {
	return !IsAddress(input) && strings.Contains(input, ".")
}

// NormalizeName case-folds a name before dispatch to the name service.
// Full name normalization is the service's responsibility.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Status is the outcome of a resolution.
type Status string

const (
	StatusPending    Status = "pending"
	StatusResolved   Status = "resolved"
	StatusUnresolved Status = "unresolved"
)

// Resolution is the result of resolving a recipient string.
type Resolution struct {
	Status  Status
	Address string
}

// NameService resolves a normalized name to an address. An error or empty
// address both mean the name has no record.
type NameService interface {
	ResolveName(ctx context.Context, name string) (string, error)
}

// Resolver resolves recipient strings against a name service.
type Resolver struct {
	names    NameService
	debounce *debounce.Debouncer
	logger   logger.Logger
}

// New creates a resolver. quiet is the debounce window for ResolveDebounced.
func New(names NameService, quiet time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Resolver{
		names:    names,
		debounce: debounce.New(quiet),
		logger:   log,
	}
}

// Resolve resolves input immediately, without debouncing. Used on the
// pipeline path where input is already settled. Name-service failures
// degrade to Unresolved, never to an error.
func (r *Resolver) Resolve(ctx context.Context, input string) Resolution {
	if IsAddress(input) {
		return Resolution{Status: StatusResolved, Address: input}
	}
	if !IsNameLike(input) {
		return Resolution{Status: StatusUnresolved}
	}

	addr, err := r.names.ResolveName(ctx, NormalizeName(input))
	if err != nil || !IsAddress(addr) {
		if err != nil {
			r.logger.Debug("Name resolution failed for %q: %v", input, err)
		}
		metrics.NameResolutions.WithLabelValues("unresolved").Inc()
		return Resolution{Status: StatusUnresolved}
	}
	metrics.NameResolutions.WithLabelValues("resolved").Inc()
	return Resolution{Status: StatusResolved, Address: addr}
}

// ResolveDebounced resolves input after the quiet period and delivers the
// result through apply. A newer call within the window supersedes this one:
// either no lookup fires at all, or its late result is discarded. Literal
// addresses still go through the debouncer so orderings stay consistent
// with name lookups, but they cost no service call.
func (r *Resolver) ResolveDebounced(ctx context.Context, input string, apply func(Resolution)) {
	r.debounce.Do(func(stale func() bool) {
		res := r.Resolve(ctx, input)
		if stale() {
			return
		}
		apply(res)
	})
}

// CancelPending discards any pending debounced resolution.
func (r *Resolver) CancelPending() {
	r.debounce.Cancel()
}

// Package correlation carries the id that ties one import run together
// across HTTP, scheduler and CLI entry points.
package correlation

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Header is the inbound header a caller may set to choose the id.
const Header = "X-Correlation-Id"

type correlationKey struct{}

func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// ContextWithCorrelationID stores id; a blank id leaves ctx unchanged.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID returns ctx with an id, minting a ULID when none is set.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := ExtractCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return context.WithValue(ctx, correlationKey{}, id), id
}

package service

import (
	"context"

	"github.com/webpro/backend/internal/model"
)

type principalCtxKey struct{}

// WithPrincipal attaches p to ctx. A principal already present is kept:
// the slot is written at most once per request.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	if p == nil {
		return ctx
	}
	if _, ok := PrincipalFrom(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*model.Principal)
	return p, ok && p != nil
}

package render

import "context"

type ctxKey struct{}

// WithCtx returns a copy of ctx with r associated.
func WithCtx(ctx context.Context, r Renderer) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// Ctx returns the Renderer associated with ctx, or a Table renderer.
func Ctx(ctx context.Context) Renderer {
	if ctx != nil {
		if r, ok := ctx.Value(ctxKey{}).(Renderer); ok {
			return r
		}
	}
	return Table{}
}

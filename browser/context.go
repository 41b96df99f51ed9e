package browser

import (
	"context"
)

type ctxKey int

const (
	ctxKeyOptions ctxKey = iota
	ctxKeyHooks
)

// WithHooks adds the resolved hooks to the context.
func WithHooks(ctx context.Context, hooks *Hooks) context.Context {
	return context.WithValue(ctx, ctxKeyHooks, hooks)
}

// GetHooks returns the hooks attached to the context.
func GetHooks(ctx context.Context) *Hooks {
	v := ctx.Value(ctxKeyHooks)
	if v == nil {
		return nil
	}
	return v.(*Hooks) //nolint:forcetypeassert
}

// WithOptions adds the run options to the context.
func WithOptions(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, ctxKeyOptions, opts)
}

// GetOptions returns the run options attached to the context.
func GetOptions(ctx context.Context) *Options {
	v := ctx.Value(ctxKeyOptions)
	if v == nil {
		return nil
	}
	if bo, ok := v.(*Options); ok {
		return bo
	}
	return nil
}

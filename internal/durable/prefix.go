package durable

import (
	"context"
	"strings"
)

type prefixed struct {
	Backend
	prefix string
}

// WithKeyPrefix namespaces every key of b under prefix. Keys reports only keys carrying
// the prefix, with the prefix removed.
func WithKeyPrefix(b Backend, prefix string) Backend {
	return &prefixed{Backend: b, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Backend.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.Backend.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Backend.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Keys(ctx context.Context) ([]string, error) {
	all, err := p.Backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, p.prefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

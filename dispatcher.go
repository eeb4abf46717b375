package autoqa

import (
	"context"
	"sort"
	"strings"
)

// Dispatcher routes prompts to the generator registered for a provider.
// A failure from the selected provider is returned as-is; there is no
// retry and no fallback to another provider.
type Dispatcher struct {
	generators map[Provider]Generator
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{generators: make(map[Provider]Generator)}
}

// Register associates a generator with a provider, replacing any previous one.
func (d *Dispatcher) Register(p Provider, g Generator) {
	d.generators[p] = g
}

// Providers returns the registered providers in sorted order.
func (d *Dispatcher) Providers() []Provider {
	providers := make([]Provider, 0, len(d.generators))
	for p := range d.generators {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// Generate sends prompt to the generator registered for p.
// Backend errors and empty responses are reported as EBACKEND.
func (d *Dispatcher) Generate(ctx context.Context, prompt string, p Provider) (string, error) {
	g, ok := d.generators[p]
	if !ok {
		return "", Errorf(EINVALID, "provider %q is not configured", p)
	}

	text, err := g.Generate(ctx, prompt)
	if err != nil {
		if code := ErrorCode(err); code != EINTERNAL {
			return "", err
		}
		return "", Errorf(EBACKEND, "%s: %v", p, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", Errorf(EBACKEND, "%s returned an empty response", p)
	}

	return text, nil
}

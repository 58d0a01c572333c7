// Package page composes storefront page responses. A page carries eager
// props plus named deferred fragments; the initial response serializes
// fragment names only and a follow-up partial reload evaluates exactly the
// fragments it names. Mergeable fragments append on the client instead of
// replacing, which drives infinite scroll.
package page

import "context"

// Resolver produces one deferred fragment's value.
type Resolver func(ctx context.Context) (any, error)

type fragment struct {
	resolve  Resolver
	merge    bool
	fallback any
}

// Page is a response under construction. Not safe for concurrent
// mutation; build it fully before rendering.
type Page struct {
	component  string
	props      map[string]any
	propOrder  []string
	fragments  map[string]*fragment
	fragOrder  []string
	mergeEager []string
}

// New starts a page for the named client component.
func New(component string) *Page {
	return &Page{
		component: component,
		props:     map[string]any{},
		fragments: map[string]*fragment{},
	}
}

// Component returns the client component this page renders.
func (p *Page) Component() string {
	return p.component
}

// Prop sets an eager prop, evaluated on the initial render.
func (p *Page) Prop(name string, value any) *Page {
	if _, ok := p.props[name]; !ok {
		p.propOrder = append(p.propOrder, name)
	}
	p.props[name] = value
	return p
}

// Merge sets an eager prop whose value the client appends rather than
// replaces.
func (p *Page) Merge(name string, value any) *Page {
	p.Prop(name, value)
	p.mergeEager = append(p.mergeEager, name)
	return p
}

// DeferOption adjusts a deferred fragment.
type DeferOption func(*fragment)

// Mergeable marks the fragment's value as append-on-client.
func Mergeable() DeferOption {
	return func(f *fragment) { f.merge = true }
}

// Fallback sets the value served when the fragment's resolver fails. The
// default fallback is nil.
func Fallback(value any) DeferOption {
	return func(f *fragment) { f.fallback = value }
}

// Defer registers a named fragment resolved by a follow-up request.
func (p *Page) Defer(name string, resolve Resolver, opts ...DeferOption) *Page {
	f := &fragment{resolve: resolve}
	for _, opt := range opts {
		opt(f)
	}
	if _, ok := p.fragments[name]; !ok {
		p.fragOrder = append(p.fragOrder, name)
	}
	p.fragments[name] = f
	return p
}

// DeferMerge registers a mergeable deferred fragment.
func (p *Page) DeferMerge(name string, resolve Resolver, opts ...DeferOption) *Page {
	return p.Defer(name, resolve, append([]DeferOption{Mergeable()}, opts...)...)
}

// DeferredNames lists registered fragment names in declaration order.
func (p *Page) DeferredNames() []string {
	names := make([]string, len(p.fragOrder))
	copy(names, p.fragOrder)
	return names
}

func (p *Page) mergeNames() []string {
	names := append([]string{}, p.mergeEager...)
	for _, name := range p.fragOrder {
		if p.fragments[name].merge {
			names = append(names, name)
		}
	}
	return names
}

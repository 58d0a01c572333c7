package page

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/eddyjj92/compay-storefront/pkg/logger"
)

// Protocol headers. The client names the fragments it wants and the
// component it believes it is on; a component mismatch falls back to a
// full initial render.
const (
	HeaderProtocol         = "X-Storefront"
	HeaderPartialData      = "X-Storefront-Partial-Data"
	HeaderPartialComponent = "X-Storefront-Partial-Component"
)

// Document is the serialized page response.
type Document struct {
	Component     string              `json:"component"`
	Props         map[string]any      `json:"props"`
	URL           string              `json:"url"`
	Version       string              `json:"version"`
	DeferredProps map[string][]string `json:"deferredProps,omitempty"`
	MergeProps    []string            `json:"mergeProps,omitempty"`
}

// Renderer serializes pages and resolves partial reloads.
type Renderer struct {
	version string
	logg    *logger.Logger
}

func NewRenderer(version string, logg *logger.Logger) *Renderer {
	return &Renderer{version: version, logg: logg}
}

// Render writes the page. An initial render evaluates eager props and
// serializes deferred fragment names only; a partial reload evaluates
// exactly the named fragments. A failing fragment degrades to its
// fallback while siblings and the overall 200 survive.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, p *Page) {
	requested := splitHeaderList(req.Header.Get(HeaderPartialData))
	partial := len(requested) > 0 && req.Header.Get(HeaderPartialComponent) == p.component

	var doc Document
	if partial {
		doc = r.renderPartial(req.Context(), req, p, requested)
	} else {
		doc = r.renderInitial(req, p)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderProtocol, "true")
	w.Header().Add("Vary", HeaderPartialData)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(doc); err != nil && r.logg != nil {
		r.logg.Error(req.Context(), "page.encode_failed", err)
	}
}

func (r *Renderer) renderInitial(req *http.Request, p *Page) Document {
	doc := Document{
		Component:  p.component,
		Props:      map[string]any{},
		URL:        req.URL.RequestURI(),
		Version:    r.version,
		MergeProps: p.mergeNames(),
	}
	for _, name := range p.propOrder {
		doc.Props[name] = p.props[name]
	}
	if names := p.DeferredNames(); len(names) > 0 {
		doc.DeferredProps = map[string][]string{"default": names}
	}
	return doc
}

func (r *Renderer) renderPartial(ctx context.Context, req *http.Request, p *Page, requested []string) Document {
	doc := Document{
		Component: p.component,
		Props:     map[string]any{},
		URL:       req.URL.RequestURI(),
		Version:   r.version,
	}

	type result struct {
		name  string
		value any
		err   error
	}

	var wg sync.WaitGroup
	results := make(chan result, len(requested))

	for _, name := range requested {
		frag, ok := p.fragments[name]
		if !ok {
			// Partial reloads may also re-request eager props.
			if value, eager := p.props[name]; eager {
				doc.Props[name] = value
			}
			continue
		}
		wg.Add(1)
		go func(name string, frag *fragment) {
			defer wg.Done()
			value, err := resolveSafely(ctx, frag)
			results <- result{name: name, value: value, err: err}
		}(name, frag)

		if frag.merge {
			doc.MergeProps = append(doc.MergeProps, name)
		}
	}
	wg.Wait()
	close(results)

	var failures error
	for res := range results {
		if res.err != nil {
			failures = multierr.Append(failures, fmt.Errorf("fragment %s: %w", res.name, res.err))
			doc.Props[res.name] = p.fragments[res.name].fallback
			continue
		}
		doc.Props[res.name] = res.value
	}
	if failures != nil && r.logg != nil {
		r.logg.Warn(ctx, fmt.Sprintf("page.fragments_degraded: %v", failures))
	}
	return doc
}

func resolveSafely(ctx context.Context, frag *fragment) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("fragment panicked: %v", recovered)
		}
	}()
	return frag.resolve(ctx)
}

func splitHeaderList(header string) []string {
	if header == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(header, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

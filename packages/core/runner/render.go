package runner

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/http"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
	"github.com/abdul-hamid-achik/apix/packages/template"
)

// Renderer renders request manifests into sendable requests.
type Renderer struct {
	engine *template.Engine
}

func NewRenderer(engine *template.Engine) *Renderer {
	if engine == nil {
		engine = template.NewEngine()
	}
	return &Renderer{engine: engine}
}

// Render builds the request described by m. parameters are the resolved
// parameter values, env the process environment and opts the options set
// on the command line, which take precedence over annotations.
func (r *Renderer) Render(m *manifest.Manifest, parameters map[string]any, env map[string]string, opts http.Options) (*http.Request, error) {
	spec, err := requestSpec(m)
	if err != nil {
		return nil, err
	}
	source := templateSource(m)

	manifestValue, err := m.Value()
	if err != nil {
		return nil, err
	}
	if parameters == nil {
		parameters = map[string]any{}
	}
	if env == nil {
		env = map[string]string{}
	}
	ctx := template.Context{}.
		Insert("manifest", manifestValue).
		Insert("parameters", parameters).
		Insert("env", env)

	annotations, err := r.engine.RenderMap(source+"#/metadata/annotations", sortedAnnotations(m.Metadata.Annotations), ctx)
	if err != nil {
		return nil, err
	}

	local := map[string]any{}
	if spec.Context != nil {
		local = spec.Context
	}
	renderedContext, err := r.engine.RenderValue(source+"#/context", local, ctx)
	if err != nil {
		return nil, err
	}
	ctx.Insert("context", renderedContext)

	url, err := r.engine.RenderString(source+"#/url", spec.Request.URL, ctx)
	if err != nil {
		return nil, err
	}
	method, err := r.engine.RenderString(source+"#/method", spec.Request.Method, ctx)
	if err != nil {
		return nil, err
	}
	headers, err := r.engine.RenderMap(source+"#/headers", spec.Request.Headers, ctx)
	if err != nil {
		return nil, err
	}
	queries, err := r.engine.RenderMap(source+"#/queries", spec.Request.Queries, ctx)
	if err != nil {
		return nil, err
	}

	body, err := r.renderBody(source, spec.Request.Body, m.Metadata.Annotations, annotations, ctx)
	if err != nil {
		return nil, err
	}

	req := http.NewRequest(method, url)
	req.Headers = headers
	req.Queries = queries
	req.Body = body
	req.Options = effectiveOptions(opts, annotations)
	return req, nil
}

func (r *Renderer) renderBody(source string, body any, raw map[string]string, annotations *ordered.Map, ctx template.Context) (http.Body, error) {
	name := source + "#/body"

	if s, ok := body.(string); ok && annotationEnabled(annotations, manifest.AnnotationConvertBodyToJSON) {
		rendered, err := r.engine.RenderString(name, s, ctx)
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(rendered), &v); err != nil {
			return http.JSONBody{Value: rendered}, nil
		}
		return http.JSONBody{Value: v}, nil
	}

	if body != nil {
		v, err := r.engine.RenderValue(name, body, ctx)
		if err != nil {
			return nil, err
		}
		return http.JSONBody{Value: v}, nil
	}

	if path := raw[manifest.AnnotationBodyFile]; path != "" {
		rendered, err := r.engine.RenderString(source+"#/body-file", path, ctx)
		if err != nil {
			return nil, err
		}
		return http.FileBody{Path: rendered}, nil
	}

	return nil, nil
}

// effectiveOptions fills the options left unset on the command line from
// the rendered annotations.
func effectiveOptions(opts http.Options, annotations *ordered.Map) http.Options {
	fallback := func(current *string, key string) {
		if *current != "" {
			return
		}
		if v, ok := annotations.Get(key); ok {
			*current = v
		}
	}
	fallback(&opts.OutputFilename, manifest.AnnotationOutputFile)
	fallback(&opts.ProxyURL, manifest.AnnotationProxyURL)
	fallback(&opts.ProxyLogin, manifest.AnnotationProxyLogin)
	fallback(&opts.ProxyPassword, manifest.AnnotationProxyPassword)
	return opts
}

func annotationEnabled(annotations *ordered.Map, key string) bool {
	v, _ := annotations.Get(key)
	return v == "true"
}

func sortedAnnotations(in map[string]string) *ordered.Map {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ordered.New()
	for _, k := range keys {
		out.Set(k, in[k])
	}
	return out
}

func requestSpec(m *manifest.Manifest) (*manifest.Request, error) {
	switch spec := m.Spec.(type) {
	case *manifest.Request:
		return spec, nil
	case *manifest.Stories:
		return nil, errdef.Manifest(templateSource(m), fmt.Errorf("executing %s manifests is not supported", manifest.KindStory))
	case nil:
		return nil, errdef.Manifest(templateSource(m), fmt.Errorf("manifest has no kind"))
	default:
		return nil, errdef.Manifest(templateSource(m), fmt.Errorf("expected a %s manifest, got %s", manifest.KindRequest, spec.KindName()))
	}
}

func templateSource(m *manifest.Manifest) string {
	if m.Path != "" {
		return m.Path
	}
	return m.Name()
}

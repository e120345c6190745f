package manifest

import (
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

// APIVersion is the only manifest version understood by apix.
const APIVersion = "apix.io/v1"

// Kind names as written in the kind field.
const (
	KindAPI           = "Api"
	KindConfiguration = "Configuration"
	KindRequest       = "Request"
	KindStory         = "Story"
)

// Well-known annotation keys.
const (
	AnnotationConvertBodyToJSON = "apix.io/convert-body-string-to-json"
	AnnotationBodyFile          = "apix.io/body-file"
	AnnotationOutputFile        = "apix.io/output-file"
	AnnotationProxyURL          = "apix.io/proxy-url"
	AnnotationProxyLogin        = "apix.io/proxy-login"
	AnnotationProxyPassword     = "apix.io/proxy-password"
	AnnotationCreatedBy         = "apix.io/created-by"
	AnnotationCreatedAt         = "apix.io/created-at"

	LabelApp = "app"
	LabelAPI = "apix.io/api"
)

// Manifest is a decoded apix document. Spec is nil when the document has
// no kind payload.
type Manifest struct {
	APIVersion string
	Metadata   Metadata
	Spec       Kind

	// Path is the file the manifest was read from, if any.
	Path string
}

type Metadata struct {
	Name        string            `yaml:"name"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
	Extensions  map[string]string `yaml:",inline"`
}

// Kind is the tagged union of manifest payloads.
type Kind interface {
	KindName() string
	isKind()
}

type Api struct {
	URL         string `yaml:"url"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
}

func (*Api) KindName() string { return KindAPI }
func (*Api) isKind()          {}

// Configuration is a flat string map of user settings.
type Configuration struct {
	Values map[string]string `yaml:",inline"`
}

func (*Configuration) KindName() string { return KindConfiguration }
func (*Configuration) isKind()          {}

type Request struct {
	Definitions map[string]any  `yaml:"definitions,omitempty"`
	Parameters  []Parameter     `yaml:"parameters,omitempty"`
	Context     map[string]any  `yaml:"context,omitempty"`
	Request     RequestTemplate `yaml:"request"`
}

func (*Request) KindName() string { return KindRequest }
func (*Request) isKind()          {}

type RequestTemplate struct {
	Method  string       `yaml:"method"`
	URL     string       `yaml:"url"`
	Headers *ordered.Map `yaml:"headers,omitempty"`
	Queries *ordered.Map `yaml:"queries,omitempty"`
	Body    any          `yaml:"body,omitempty"`
}

// Parameter describes a named input of a request manifest.
type Parameter struct {
	Name        string `yaml:"name"`
	Required    bool   `yaml:"required"`
	Password    bool   `yaml:"password,omitempty"`
	Description string `yaml:"description,omitempty"`
	Schema      any    `yaml:"schema,omitempty"`
}

// EffectiveSchema returns the parameter schema, defaulting to a string schema.
func (p Parameter) EffectiveSchema() any {
	if p.Schema == nil {
		return map[string]any{"type": "string"}
	}
	return p.Schema
}

// Stories groups multi-step request flows. They are decoded and listed but
// not executed.
type Stories struct {
	Definitions map[string]any `yaml:"definitions,omitempty"`
	Parameters  []Parameter    `yaml:"parameters,omitempty"`
	Stories     []Story        `yaml:"stories"`
}

func (*Stories) KindName() string { return KindStory }
func (*Stories) isKind()          {}

type Story struct {
	Name        string                    `yaml:"name"`
	Needs       string                    `yaml:"needs,omitempty"`
	Description string                    `yaml:"description,omitempty"`
	Context     map[string]map[string]any `yaml:"context,omitempty"`
	Steps       []Step                    `yaml:"steps"`
}

type Step struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Context     map[string]any  `yaml:"context,omitempty"`
	If          string          `yaml:"if,omitempty"`
	Request     RequestTemplate `yaml:"request"`
}

// KindName returns the kind of the payload or "" when there is none.
func (m *Manifest) KindName() string {
	if m.Spec == nil {
		return ""
	}
	return m.Spec.KindName()
}

func (m *Manifest) Name() string {
	return m.Metadata.Name
}

// Annotation returns the annotation value for key.
func (m *Manifest) Annotation(key string) (string, bool) {
	v, ok := m.Metadata.Annotations[key]
	return v, ok
}

func (m *Manifest) Label(key string) (string, bool) {
	v, ok := m.Metadata.Labels[key]
	return v, ok
}

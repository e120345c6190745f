package manifest

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

type envelope struct {
	APIVersion string    `yaml:"apiVersion"`
	Kind       string    `yaml:"kind,omitempty"`
	Metadata   Metadata  `yaml:"metadata"`
	Spec       yaml.Node `yaml:"spec,omitempty"`
}

type outEnvelope struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind,omitempty"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Kind     `yaml:"spec,omitempty"`
}

func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	var env envelope
	if err := node.Decode(&env); err != nil {
		return err
	}
	if env.APIVersion != APIVersion {
		return fmt.Errorf("unsupported apiVersion %q (expected %s)", env.APIVersion, APIVersion)
	}

	var spec Kind
	switch env.Kind {
	case KindAPI:
		spec = &Api{}
	case KindConfiguration:
		spec = &Configuration{}
	case KindRequest:
		spec = &Request{}
	case KindStory:
		spec = &Stories{}
	case "":
	default:
		return fmt.Errorf("unknown kind %q", env.Kind)
	}

	if spec != nil && env.Spec.Kind != 0 {
		if err := env.Spec.Decode(spec); err != nil {
			return fmt.Errorf("decoding %s spec: %w", env.Kind, err)
		}
	}
	normalizeKind(spec)

	*m = Manifest{
		APIVersion: env.APIVersion,
		Metadata:   env.Metadata,
		Spec:       spec,
		Path:       m.Path,
	}
	return nil
}

func (m Manifest) MarshalYAML() (any, error) {
	return outEnvelope{
		APIVersion: APIVersion,
		Kind:       m.KindName(),
		Metadata:   m.Metadata,
		Spec:       m.Spec,
	}, nil
}

// normalizeKind converts decoded free-form values into JSON-shaped values.
func normalizeKind(k Kind) {
	switch s := k.(type) {
	case *Request:
		s.Definitions = normalizeMap(s.Definitions)
		s.Context = normalizeMap(s.Context)
		normalizeParameters(s.Parameters)
		normalizeTemplate(&s.Request)
	case *Stories:
		s.Definitions = normalizeMap(s.Definitions)
		normalizeParameters(s.Parameters)
		for i := range s.Stories {
			story := &s.Stories[i]
			for env, values := range story.Context {
				story.Context[env] = normalizeMap(values)
			}
			for j := range story.Steps {
				story.Steps[j].Context = normalizeMap(story.Steps[j].Context)
				normalizeTemplate(&story.Steps[j].Request)
			}
		}
	case *Configuration:
		if s.Values == nil {
			s.Values = make(map[string]string)
		}
	}
}

func normalizeParameters(params []Parameter) {
	for i := range params {
		params[i].Schema = Normalize(params[i].Schema)
	}
}

func normalizeTemplate(t *RequestTemplate) {
	if t.Headers == nil {
		t.Headers = ordered.New()
	}
	if t.Queries == nil {
		t.Queries = ordered.New()
	}
	t.Body = Normalize(t.Body)
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := Normalize(m).(map[string]any)
	return out
}

// Normalize converts YAML-decoded values into JSON-shaped values: maps get
// string keys and sequences become []any.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

// Parse decodes a manifest document. source names the document in errors.
func Parse(data []byte, source string) (*Manifest, error) {
	m := &Manifest{Path: source}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errdef.Manifest(source, err)
	}
	return m, nil
}

// Load reads and decodes the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdef.IO(path, err)
	}
	return Parse(data, path)
}

// Marshal encodes a manifest as YAML.
func Marshal(m *Manifest) ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, errdef.Serialization("manifest", err)
	}
	return out, nil
}

// Save writes the manifest to path.
func Save(m *Manifest, path string) error {
	out, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errdef.IO(path, err)
	}
	return nil
}

// Value returns the manifest as a generic JSON-shaped map, as seen by
// templates under the manifest key.
func (m *Manifest) Value() (map[string]any, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, errdef.Serialization("manifest", err)
	}
	var v map[string]any
	if err := yaml.Unmarshal(out, &v); err != nil {
		return nil, errdef.Serialization("manifest", err)
	}
	return normalizeMap(v), nil
}

// New builds a manifest with the standard labels and creation annotations.
func New(name string, spec Kind, labels map[string]string) *Manifest {
	l := map[string]string{LabelApp: "apix"}
	for k, v := range labels {
		l[k] = v
	}
	return &Manifest{
		APIVersion: APIVersion,
		Metadata: Metadata{
			Name:   name,
			Labels: l,
			Annotations: map[string]string{
				AnnotationCreatedBy: currentUser(),
				AnnotationCreatedAt: time.Now().UTC().Format(time.RFC3339),
			},
		},
		Spec: spec,
	}
}

// NewRequest builds a Request manifest attached to the named api.
func NewRequest(api, name string, req *Request) *Manifest {
	return New(name, req, map[string]string{LabelAPI: api})
}

// NewConfiguration builds the per-user configuration manifest.
func NewConfiguration(values map[string]string) *Manifest {
	return New("configuration", &Configuration{Values: values}, nil)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

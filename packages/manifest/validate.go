package manifest

import (
	"fmt"
	"strings"
)

// Problems returns the structural problems of a decoded manifest, one
// message per problem. Decoding already rejects unknown versions and kinds.
func (m *Manifest) Problems() []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(m.Metadata.Name) == "" {
		add("metadata.name is required")
	}

	switch s := m.Spec.(type) {
	case nil:
		add("manifest has no kind")
	case *Api:
		if s.URL == "" {
			add("spec.url is required")
		}
	case *Request:
		problems = append(problems, parameterProblems("spec.parameters", s.Parameters)...)
		problems = append(problems, templateProblems("spec.request", s.Request)...)
	case *Stories:
		problems = append(problems, parameterProblems("spec.parameters", s.Parameters)...)
		names := make(map[string]bool, len(s.Stories))
		for i, story := range s.Stories {
			path := fmt.Sprintf("spec.stories[%d]", i)
			switch {
			case story.Name == "":
				add("%s.name is required", path)
			case names[story.Name]:
				add("%s: duplicate story %q", path, story.Name)
			}
			names[story.Name] = true
			for j, step := range story.Steps {
				problems = append(problems, templateProblems(fmt.Sprintf("%s.steps[%d].request", path, j), step.Request)...)
			}
		}
		for i, story := range s.Stories {
			if story.Needs != "" && !names[story.Needs] {
				add("spec.stories[%d].needs: unknown story %q", i, story.Needs)
			}
		}
	}
	return problems
}

func parameterProblems(path string, params []Parameter) []string {
	var problems []string
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		switch {
		case p.Name == "":
			problems = append(problems, fmt.Sprintf("%s[%d].name is required", path, i))
		case seen[p.Name]:
			problems = append(problems, fmt.Sprintf("%s[%d]: duplicate parameter %q", path, i, p.Name))
		}
		seen[p.Name] = true
	}
	return problems
}

func templateProblems(path string, t RequestTemplate) []string {
	if strings.TrimSpace(t.URL) == "" {
		return []string{path + ".url is required"}
	}
	return nil
}

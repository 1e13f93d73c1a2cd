package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Problem is one schema violation.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationError lists every problem found in a config.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Validate checks cfg against the embedded schema, plus the rules a
// schema cannot express. Returns *ValidationError on failure.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.Unify(ctx.Encode(cfg.document()))

	var problems []Problem
	if err := value.Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			problems = append(problems, Problem{
				Path:    strings.Join(e.Path(), "."),
				Message: fmt.Sprintf(format, args...),
			})
		}
	}

	seen := make(map[string]bool, len(cfg.Classes))
	for i, cl := range cfg.Classes {
		if seen[cl.Name] {
			problems = append(problems, Problem{
				Path:    fmt.Sprintf("classes.%d.name", i),
				Message: fmt.Sprintf("duplicate class %q", cl.Name),
			})
		}
		seen[cl.Name] = true
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// document is cfg in the shape the schema describes.
func (c *Config) document() map[string]any {
	classes := make([]any, len(c.Classes))
	for i, cl := range c.Classes {
		classes[i] = map[string]any{
			"name":     cl.Name,
			"images":   cl.Images,
			"listings": cl.Listings,
		}
	}
	expected := make([]any, len(c.ExpectedFails))
	for i, name := range c.ExpectedFails {
		expected[i] = name
	}

	return map[string]any{
		"simulator":           c.Simulator,
		"waves_dir":           c.WavesDir,
		"timeout":             c.Timeout,
		"supervise":           int64(c.Supervise),
		"database":            c.Database,
		"expected_fails":      expected,
		"expected_fails_file": c.ExpectedFailsFile,
		"classes":             classes,
	}
}

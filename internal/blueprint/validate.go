package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError is one schema violation located by a JSON pointer.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource("blueprint.json", strings.NewReader(schemaDocument)); err != nil {
			compileErr = fmt.Errorf("failed to load blueprint schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("blueprint.json")
	})
	return compiledSchema, compileErr
}

// Validate checks a typed blueprint against the schema.
func Validate(bp *Blueprint) Result {
	if bp == nil {
		return Result{Errors: []ValidationError{{Path: "/", Message: "blueprint is null"}}}
	}
	data, err := json.Marshal(bp)
	if err != nil {
		return Result{Errors: []ValidationError{{Path: "/", Message: err.Error()}}}
	}
	res, err := ValidateJSON(data)
	if err != nil {
		return Result{Errors: []ValidationError{{Path: "/", Message: err.Error()}}}
	}
	return res
}

// ValidateJSON checks raw JSON. The error return is reserved for input that
// is not JSON at all or a schema that failed to compile.
func ValidateJSON(data []byte) (Result, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("blueprint is not valid JSON: %w", err)
	}
	return ValidateValue(doc)
}

// ValidateValue checks an already decoded JSON value (maps, slices, float64s).
func ValidateValue(doc any) (Result, error) {
	s, err := schema()
	if err != nil {
		return Result{}, err
	}

	err = s.Validate(doc)
	if err == nil {
		return Result{Valid: true}, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var out []ValidationError
	collectLeaves(verr, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return Result{Errors: out}, nil
}

func collectLeaves(e *jsonschema.ValidationError, out *[]ValidationError) {
	if len(e.Causes) > 0 {
		for _, cause := range e.Causes {
			collectLeaves(cause, out)
		}
		return
	}

	if strings.HasSuffix(e.KeywordLocation, "/required") {
		for _, prop := range missingProperties(e.Message) {
			*out = append(*out, ValidationError{
				Path:    strings.TrimSuffix(e.InstanceLocation, "/") + "/" + prop,
				Message: "is required",
			})
		}
		if len(missingProperties(e.Message)) > 0 {
			return
		}
	}

	*out = append(*out, ValidationError{Path: e.InstanceLocation, Message: e.Message})
}

func missingProperties(msg string) []string {
	const marker = "missing properties:"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return nil
	}
	var props []string
	for _, part := range strings.Split(msg[idx+len(marker):], ",") {
		name := strings.Trim(strings.TrimSpace(part), `'"`)
		if name != "" {
			props = append(props, name)
		}
	}
	return props
}

// FormatErrors renders errors as "path message" pairs joined by "; ".
func FormatErrors(errs []ValidationError) string {
	if len(errs) == 0 {
		return "No errors"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		path := e.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+" "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// RepairPrompt asks the generator to return only a corrected document.
func RepairPrompt(errs []ValidationError) string {
	return "The JSON you produced did not match the required schema. " +
		"Please ONLY return a corrected JSON object (no commentary). Errors: " +
		FormatErrors(errs)
}

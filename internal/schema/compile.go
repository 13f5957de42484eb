package schema

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sparqltt/internal/thingtalk"
)

//go:embed definitions.cue
var definitions string

// CompileError is a schema error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a schema from a .cue file or from the CUE package in a
// directory.
func Load(path string) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("schema %s: no CUE instances", path)
		}
		if err := instances[0].Err; err != nil {
			return nil, formatCUEError(err)
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", path, err)
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}
	return Compile(value)
}

// CompileString compiles schema source text. Used by tests and embedded
// schemas.
func CompileString(src string) (*Index, error) {
	return Compile(cuecontext.New().CompileString(src, cue.Filename("schema.cue")))
}

// Compile validates v against the schema definitions and builds the index.
func Compile(v cue.Value) (*Index, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	defs := v.Context().CompileString(definitions, cue.Filename("definitions.cue"))
	if err := defs.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v = v.Unify(defs.LookupPath(cue.ParsePath("#Schema")))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	class, err := v.LookupPath(cue.ParsePath("class")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ix := newIndex(class)

	iter, err := v.LookupPath(cue.ParsePath("domains")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		domain, err := compileDomain(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		ix.addDomain(domain)
	}

	if len(ix.domains) == 0 {
		return nil, &CompileError{Field: "domains", Message: "at least one domain is required", Pos: v.Pos()}
	}
	if _, ok := ix.domainByName[GenericDomain]; !ok {
		return nil, &CompileError{
			Field:   "domains",
			Message: fmt.Sprintf("the generic %q domain is required", GenericDomain),
			Pos:     v.Pos(),
		}
	}
	return ix, nil
}

func compileDomain(name string, v cue.Value) (*Domain, error) {
	subject, err := v.LookupPath(cue.ParsePath("wikidata_subject")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	domain := &Domain{Name: name, Subject: subject}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return domain, nil
	}
	iter, err := propsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		prop, err := compileProperty(iter.Label(), iter.Value())
		if err != nil {
			return nil, fmt.Errorf("domain %s: %w", name, err)
		}
		domain.Properties = append(domain.Properties, prop)
	}
	return domain, nil
}

func compileProperty(name string, v cue.Value) (Property, error) {
	prop := Property{Name: name}

	if idVal := v.LookupPath(cue.ParsePath("wikidata_id")); idVal.Exists() {
		id, err := idVal.String()
		if err != nil {
			return Property{}, formatCUEError(err)
		}
		prop.ID = id
	}

	typVal := v.LookupPath(cue.ParsePath("type"))
	declared, err := typVal.String()
	if err != nil {
		return Property{}, formatCUEError(err)
	}
	typ, err := thingtalk.ParseType(declared)
	if err != nil {
		return Property{}, &CompileError{Field: name + ".type", Message: err.Error(), Pos: typVal.Pos()}
	}
	prop.Type = typ

	if fieldsVal := v.LookupPath(cue.ParsePath("fields")); fieldsVal.Exists() {
		iter, err := fieldsVal.Fields()
		if err != nil {
			return Property{}, formatCUEError(err)
		}
		compound := &thingtalk.CompoundType{Fields: map[string]thingtalk.Type{
			thingtalk.CompoundValueField: thingtalk.ElemType(typ),
		}}
		for iter.Next() {
			field, err := compileProperty(iter.Label(), iter.Value())
			if err != nil {
				return Property{}, fmt.Errorf("%s: %w", name, err)
			}
			if field.Name == thingtalk.CompoundValueField {
				return Property{}, &CompileError{
					Field:   name + ".fields",
					Message: "the value field is implicit",
					Pos:     iter.Value().Pos(),
				}
			}
			compound.Fields[field.Name] = field.Type
			prop.Fields = append(prop.Fields, field)
		}
		if thingtalk.IsArray(typ) {
			prop.Type = &thingtalk.ArrayType{Elem: compound}
		} else {
			prop.Type = compound
		}
	}

	if coversVal := v.LookupPath(cue.ParsePath("covers")); coversVal.Exists() {
		iter, err := coversVal.List()
		if err != nil {
			return Property{}, formatCUEError(err)
		}
		for iter.Next() {
			pid, err := iter.Value().String()
			if err != nil {
				return Property{}, formatCUEError(err)
			}
			prop.Covers = append(prop.Covers, pid)
		}
	}
	return prop, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	compileErr := &CompileError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		compileErr.Pos = positions[0]
	}
	return compileErr
}

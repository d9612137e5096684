package server

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// directiveSchema constrains the JSON shape clients may send before any
// of it is decoded into graph nodes. Node kinds and prop values stay
// open; the engine reports unknown kinds and bad props itself.
const directiveSchema = `
#node: {
	kind:            string & !=""
	props?:          {...}
	output_channel?: int & >=0
	children?:       [...#node]
}

{
	graph?:     [...#node]
	resources?: {[string]: string & !=""}
}
`

type schemaValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

func newSchemaValidator() *schemaValidator {
	ctx := cuecontext.New()
	schema := ctx.CompileString(directiveSchema)
	if err := schema.Err(); err != nil {
		panic(fmt.Sprintf("server: compiling directive schema: %v", err))
	}
	return &schemaValidator{ctx: ctx, schema: schema}
}

// validate checks a raw directive message against the schema. JSON is
// valid CUE, so the payload compiles directly.
func (v *schemaValidator) validate(raw []byte) error {
	val := v.ctx.CompileBytes(raw)
	if err := val.Err(); err != nil {
		return fmt.Errorf("server: parsing directive: %w", err)
	}
	unified := v.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("server: invalid directive: %w", err)
	}
	return nil
}

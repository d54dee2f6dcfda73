package audit

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaDef  cue.Value
	schemaCtx  *cue.Context
	schemaErr  error
)

func compiledSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile embedded schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Document"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("embedded schema has no #Document definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// ValidateSchema checks a raw decompressed package payload against the
// embedded CUE schema. JSON is a subset of CUE, so the payload compiles
// directly. Returns a descriptive error naming the offending path when
// the payload does not satisfy #Document.
func ValidateSchema(payload []byte) error {
	ctx, def, err := compiledSchema()
	if err != nil {
		return err
	}

	data := ctx.CompileBytes(payload, cue.Filename("package.json"))
	if err := data.Err(); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("payload does not match package schema: %w", err)
	}
	return nil
}

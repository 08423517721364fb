package env

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/value"
)

// jsonEnvSchema constrains a JSON environment document to a flat
// object of scalar values — the only shapes value.Value's coercion
// rules (spec.md §3) can represent at the top level.
const jsonEnvSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": ["integer", "number", "string", "boolean", "null"]
  }
}`

// JSONEnv is a MapEnv seeded by decoding and schema-validating a JSON
// document: each top-level property becomes a variable.
type JSONEnv struct {
	*MapEnv
}

// NewJSONEnvFromFile reads path, validates it against jsonEnvSchema,
// and returns a JSONEnv seeded from its properties.
func NewJSONEnvFromFile(path string) (*JSONEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exprerr.NewIOError("reading JSON environment file", err)
	}
	return NewJSONEnvFromBytes(data)
}

// NewJSONEnvFromBytes validates and decodes a JSON document's bytes.
func NewJSONEnvFromBytes(data []byte) (*JSONEnv, error) {
	schema, err := jsonschema.CompileString("exprflow-env.json", jsonEnvSchema)
	if err != nil {
		return nil, exprerr.NewIOError("compiling environment schema", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, exprerr.NewIOError("parsing JSON environment", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, exprerr.NewIOError("JSON environment failed schema validation", err)
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, exprerr.NewIOError("JSON environment document must be an object", nil)
	}

	values := make(map[string]value.Value, len(fields))
	for name, raw := range fields {
		v, err := jsonToValue(raw)
		if err != nil {
			return nil, exprerr.NewIOError(fmt.Sprintf("decoding field %q", name), err)
		}
		values[name] = v
	}
	return &JSONEnv{MapEnv: NewMapEnvFrom(values)}, nil
}

func jsonToValue(raw any) (value.Value, error) {
	switch v := raw.(type) {
	case nil:
		return value.NullValue, nil
	case bool:
		return value.NewBool(v), nil
	case string:
		return value.NewString(v), nil
	case float64:
		if v == float64(int32(v)) {
			return value.NewInt(int32(v)), nil
		}
		return value.NewDouble(v), nil
	default:
		return value.NullValue, fmt.Errorf("unsupported JSON value type: %T", raw)
	}
}

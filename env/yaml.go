package env

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/value"
)

// YAMLEnv is a MapEnv seeded by decoding a flat YAML mapping document:
// each top-level key becomes a variable.
type YAMLEnv struct {
	*MapEnv
}

// NewYAMLEnvFromFile reads and decodes path into a YAMLEnv.
func NewYAMLEnvFromFile(path string) (*YAMLEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exprerr.NewIOError("reading YAML environment file", err)
	}
	return NewYAMLEnvFromBytes(data)
}

// NewYAMLEnvFromBytes decodes a YAML document's bytes.
func NewYAMLEnvFromBytes(data []byte) (*YAMLEnv, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, exprerr.NewIOError("parsing YAML environment", err)
	}

	values := make(map[string]value.Value, len(fields))
	for name, raw := range fields {
		v, err := yamlToValue(raw)
		if err != nil {
			return nil, exprerr.NewIOError(fmt.Sprintf("decoding field %q", name), err)
		}
		values[name] = v
	}
	return &YAMLEnv{MapEnv: NewMapEnvFrom(values)}, nil
}

func yamlToValue(raw any) (value.Value, error) {
	switch v := raw.(type) {
	case nil:
		return value.NullValue, nil
	case bool:
		return value.NewBool(v), nil
	case string:
		return value.NewString(v), nil
	case int:
		return value.NewInt(int32(v)), nil
	case int32:
		return value.NewInt(v), nil
	case int64:
		return value.NewInt(int32(v)), nil
	case float64:
		return value.NewDouble(v), nil
	default:
		return value.NullValue, fmt.Errorf("unsupported YAML value type: %T", raw)
	}
}

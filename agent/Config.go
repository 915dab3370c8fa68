package agent

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"

	"github.com/samuelfneumann/gopanda/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type agentType
// are deserialized into the concrete type of config.
func Register(agentType Type, config Config) {
	t := reflect.TypeOf(config)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	registeredTypes[agentType] = t
}

// TypedConfig wraps a Config so that it can be JSON marshaled and
// unmarshaled into its underlying concrete type
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type.
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("unmarshalJSON: invalid JSON")
	}

	typeName := Type(gjson.GetBytes(data, "Type").String())
	ty, found := registeredTypes[typeName]
	if !found {
		return fmt.Errorf("unmarshalJSON: no config registered for agent "+
			"type %q", typeName)
	}

	value := reflect.New(ty)
	raw := gjson.GetBytes(data, "Config").Raw
	if raw == "" {
		return fmt.Errorf("unmarshalJSON: missing config for agent type %q",
			typeName)
	}
	if err := json.Unmarshal([]byte(raw), value.Interface()); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	config, ok := value.Elem().Interface().(Config)
	if !ok {
		// Configs with pointer receivers
		config, ok = value.Interface().(Config)
		if !ok {
			return fmt.Errorf("unmarshalJSON: type %v registered for %q is "+
				"not a Config", ty, typeName)
		}
	}

	t.Type = typeName
	t.Config = config
	return nil
}

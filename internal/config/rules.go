package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// IntRule is an integer rule that a config file may switch off with false.
type IntRule struct {
	Value   int
	Enabled bool
}

// Int returns an enabled rule.
func Int(v int) IntRule { return IntRule{Value: v, Enabled: true} }

// OrOff returns the rule value, or off when the rule is disabled.
func (r IntRule) OrOff(off int) int {
	if !r.Enabled {
		return off
	}
	return r.Value
}

func (r IntRule) String() string {
	if !r.Enabled {
		return "false"
	}
	return strconv.Itoa(r.Value)
}

// UnmarshalYAML accepts an integer or false.
func (r *IntRule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!bool" {
		var on bool
		if err := value.Decode(&on); err != nil {
			return err
		}
		if on {
			return fmt.Errorf("line %d: expected an integer or false, got true", value.Line)
		}
		*r = IntRule{}
		return nil
	}
	var n int
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("line %d: expected an integer or false, got %q", value.Line, value.Value)
	}
	*r = Int(n)
	return nil
}

// MarshalYAML writes false for a disabled rule.
func (r IntRule) MarshalYAML() (any, error) {
	if !r.Enabled {
		return false, nil
	}
	return r.Value, nil
}

// UnmarshalTOML accepts an integer or false.
func (r *IntRule) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case bool:
		if v {
			return fmt.Errorf("expected an integer or false, got true")
		}
		*r = IntRule{}
	case int64:
		*r = Int(int(v))
	default:
		return fmt.Errorf("expected an integer or false, got %T", data)
	}
	return nil
}

// ListRule is a list of keys that a config file may switch off with false.
type ListRule struct {
	Keys    []string
	Enabled bool
}

// List returns an enabled rule holding a copy of keys.
func List(keys ...string) ListRule {
	return ListRule{Keys: append([]string(nil), keys...), Enabled: true}
}

// OrNil returns the keys of an enabled rule and nil otherwise.
func (r ListRule) OrNil() []string {
	if !r.Enabled {
		return nil
	}
	return append([]string(nil), r.Keys...)
}

// UnmarshalYAML accepts a sequence of strings or false.
func (r *ListRule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!bool" {
		var on bool
		if err := value.Decode(&on); err != nil {
			return err
		}
		if on {
			return fmt.Errorf("line %d: expected a list of keys or false, got true", value.Line)
		}
		*r = ListRule{}
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of keys or false", value.Line)
	}
	var keys []string
	if err := value.Decode(&keys); err != nil {
		return err
	}
	*r = List(keys...)
	return nil
}

// MarshalYAML writes false for a disabled rule.
func (r ListRule) MarshalYAML() (any, error) {
	if !r.Enabled {
		return false, nil
	}
	return r.Keys, nil
}

// UnmarshalTOML accepts an array of strings or false.
func (r *ListRule) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case bool:
		if v {
			return fmt.Errorf("expected a list of keys or false, got true")
		}
		*r = ListRule{}
		return nil
	case []any:
		keys := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("item %d: expected a string, got %T", i, item)
			}
			keys = append(keys, s)
		}
		*r = ListRule{Keys: keys, Enabled: true}
		return nil
	default:
		return fmt.Errorf("expected a list of keys or false, got %T", data)
	}
}

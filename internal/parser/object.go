package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// object is a decoded document mapping together with its location in the
// document, used to produce precise error paths.
type object struct {
	path string
	m    map[string]any
}

func newObject(path string, v any) (object, bool) {
	m, ok := asMap(v)
	return object{path: path, m: m}, ok
}

func (o object) child(key string) string {
	if o.path == "" {
		return key
	}

	return o.path + "." + key
}

func (o object) has(key string) bool {
	v, ok := o.m[key]
	return ok && v != nil
}

// value returns the value of key. Null values count as absent.
func (o object) value(key string, required bool) (any, bool, error) {
	v, ok := o.m[key]
	if !ok || v == nil {
		if required {
			return nil, false, &ParseError{
				Kind: KindMissingKey,
				Path: o.child(key),
				Err:  &MissingKeyError{Key: key},
			}
		}
		return nil, false, nil
	}

	return v, true, nil
}

func (o object) object(key string, required bool) (object, bool, error) {
	v, ok, err := o.value(key, required)
	if err != nil || !ok {
		return object{path: o.child(key)}, false, err
	}

	obj, isMap := newObject(o.child(key), v)
	if !isMap {
		return obj, false, o.invalid(key, "an object", v)
	}

	return obj, true, nil
}

func (o object) string(key string, required bool) (string, bool, error) {
	v, ok, err := o.value(key, required)
	if err != nil || !ok {
		return "", false, err
	}

	s, isString := v.(string)
	if !isString {
		return "", false, o.invalid(key, "a string", v)
	}

	return s, true, nil
}

// bool returns false when the key is absent.
func (o object) bool(key string) (bool, error) {
	v, ok, err := o.value(key, false)
	if err != nil || !ok {
		return false, err
	}

	b, isBool := v.(bool)
	if !isBool {
		return false, o.invalid(key, "a boolean", v)
	}

	return b, nil
}

func (o object) int(key string) (*int, error) {
	v, ok, err := o.value(key, false)
	if err != nil || !ok {
		return nil, err
	}

	i, isInt := asInt(v)
	if !isInt {
		return nil, o.invalid(key, "an integer", v)
	}

	return &i, nil
}

func (o object) list(key string, required bool) ([]any, error) {
	v, ok, err := o.value(key, required)
	if err != nil || !ok {
		return nil, err
	}

	l, isList := v.([]any)
	if !isList {
		return nil, o.invalid(key, "a list", v)
	}

	return l, nil
}

func (o object) strings(key string) ([]string, bool, error) {
	l, err := o.list(key, false)
	if err != nil || l == nil {
		return nil, false, err
	}

	out := make([]string, 0, len(l))
	for i, item := range l {
		s, ok := item.(string)
		if !ok {
			return nil, false, o.invalid(fmt.Sprintf("%s[%d]", key, i), "a string", item)
		}

		out = append(out, s)
	}

	return out, true, nil
}

// objects returns the entries of the list under key as objects.
func (o object) objects(key string, required bool) ([]object, error) {
	l, err := o.list(key, required)
	if err != nil {
		return nil, err
	}

	out := make([]object, 0, len(l))
	for i, item := range l {
		itemKey := fmt.Sprintf("%s[%d]", key, i)

		obj, ok := newObject(o.child(itemKey), item)
		if !ok {
			return nil, o.invalid(itemKey, "an object", item)
		}

		out = append(out, obj)
	}

	return out, nil
}

func (o object) invalid(key string, expected string, got any) *ParseError {
	return parseErrorf(KindInvalidValue, o.child(key), "expected %s, got %T", expected, got)
}

// asMap accepts both JSON and YAML decoded mappings.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = v
		}
		return m, true
	}

	return nil, false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), t <= math.MaxInt32
	case float64:
		return int(t), t == math.Trunc(t)
	case json.Number:
		i, err := strconv.Atoi(string(t))
		return i, err == nil
	}

	return 0, false
}

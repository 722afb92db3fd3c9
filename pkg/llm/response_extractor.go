package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The extractor takes the span from the first opening bracket to the last
// closing one. A preamble that itself contains brackets widens that span and
// fails to parse; that case is reported as an ExtractionError.

// ExtractOne parses a single object matching shape out of raw model text and
// decodes it into out.
func ExtractOne(raw string, shape *Shape, out any) error {
	value, err := extractValue(raw, shape, false)
	if err != nil {
		return err
	}
	return decodeInto(value, shape, out)
}

// ExtractList parses a list of objects matching shape. A lone object is
// accepted as a list of one.
func ExtractList(raw string, shape *Shape, out any) error {
	value, err := extractValue(raw, shape, true)
	if err != nil {
		return err
	}
	return decodeInto(value, shape, out)
}

// extractValue returns the validated JSON value, normalized so that it can be
// cached and decoded again.
func extractValue(raw string, shape *Shape, list bool) (any, error) {
	name := shapeName(shape)

	parsed, err := locateJSON(raw)
	if err != nil {
		return nil, &ExtractionError{Shape: name, Reason: err.Error()}
	}
	return conform(parsed, shape, list)
}

func conform(parsed any, shape *Shape, list bool) (any, error) {
	name := shapeName(shape)
	if list {
		items, ok := parsed.([]any)
		if !ok {
			obj, isObj := parsed.(map[string]any)
			if !isObj {
				return nil, &ExtractionError{Shape: name, Reason: "expected a JSON array or object"}
			}
			items = []any{obj}
		}
		for i, item := range items {
			v, err := validateObject(item, shape, fmt.Sprintf("[%d]", i))
			if err != nil {
				return nil, &ExtractionError{Shape: name, Reason: err.Error()}
			}
			items[i] = v
		}
		return items, nil
	}

	if _, isList := parsed.([]any); isList {
		return nil, &ExtractionError{Shape: name, Reason: "expected a JSON object, got an array"}
	}
	v, err := validateObject(parsed, shape, "")
	if err != nil {
		return nil, &ExtractionError{Shape: name, Reason: err.Error()}
	}
	return v, nil
}

func locateJSON(raw string) (any, error) {
	var objErr error
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		var v any
		if objErr = json.Unmarshal([]byte(raw[start:end+1]), &v); objErr == nil {
			return v, nil
		}
	}

	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start >= 0 && end > start {
		var v any
		err := json.Unmarshal([]byte(raw[start:end+1]), &v)
		if err == nil {
			return v, nil
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if objErr != nil {
		return nil, fmt.Errorf("invalid JSON: %w", objErr)
	}
	return nil, fmt.Errorf("no JSON object or array found")
}

func validateObject(v any, shape *Shape, path string) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object", displayPath(path))
	}
	if shape == nil {
		return obj, nil
	}

	for _, f := range shape.Fields {
		fieldPath := joinPath(path, f.Name)
		fv, present := obj[f.Name]
		if !present || fv == nil {
			if f.Required {
				return nil, fmt.Errorf("%s: required field missing", fieldPath)
			}
			continue
		}
		coerced, err := validateValue(fv, f.Type, f.Elem, f.Shape, fieldPath)
		if err != nil {
			return nil, err
		}
		obj[f.Name] = coerced
	}
	return obj, nil
}

func validateValue(v any, t, elem TypeTag, shape *Shape, path string) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%s: expected string", path)
	case TypeNumber:
		if n, ok := toNumber(v); ok {
			return n, nil
		}
		return nil, fmt.Errorf("%s: expected number", path)
	case TypeInteger:
		if n, ok := toNumber(v); ok && n == float64(int64(n)) {
			return n, nil
		}
		return nil, fmt.Errorf("%s: expected integer", path)
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("%s: expected boolean", path)
	case TypeObject:
		return validateObject(v, shape, path)
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected array", path)
		}
		if elem == "" {
			return items, nil
		}
		for i, item := range items {
			if item == nil {
				return nil, fmt.Errorf("%s[%d]: null element", path, i)
			}
			coerced, err := validateValue(item, elem, "", shape, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = coerced
		}
		return items, nil
	default:
		return v, nil
	}
}

// toNumber accepts JSON numbers and numeric strings such as "2" or "1.5".
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func decodeInto(value any, shape *Shape, out any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return &ExtractionError{Shape: shapeName(shape), Reason: "re-encode failed", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ExtractionError{Shape: shapeName(shape), Reason: "decode failed", Err: err}
	}
	return nil
}

func shapeName(shape *Shape) string {
	if shape == nil {
		return "value"
	}
	return shape.Name
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

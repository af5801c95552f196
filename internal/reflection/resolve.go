package reflection

import (
	"fmt"

	"github.com/argonsync/argon/api"
)

// ErrUnknownProperty is returned by Resolve when (class, property) is not in
// the reflection database. Per spec.md §4.2.1/§7, this is logged and
// dropped by the caller, never fatal.
var ErrUnknownProperty = fmt.Errorf("reflection: unknown property")

// Resolve coerces a raw, untyped value (as decoded from JSON) into a
// TaggedValue appropriate for (class, property), per spec.md §4.2.1's type
// resolution step. It mirrors the UnresolvedValue::resolve call in
// original_source/src/middleware/data.rs, minus the Rust-specific variant
// machinery: Go's `any` decoded from encoding/json already distinguishes
// string/float64/bool/map/slice, so resolution here is a type-tag dispatch.
func Resolve(class, property string, raw any) (api.TaggedValue, error) {
	wantType, known := PropertyType(class, property)
	if !known {
		// Attributes and Tags are accepted on any class (engine-wide
		// pseudo-properties), matching data.rs's unconditional handling of
		// "attributes"/"tags" regardless of class.
		switch property {
		case "Attributes":
			wantType = api.TypeAttributes
		case "Tags":
			wantType = api.TypeTags
		default:
			return api.TaggedValue{}, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, class, property)
		}
	}

	switch wantType {
	case api.TypeString:
		s, ok := raw.(string)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected string, got %T", class, property, raw)
		}
		return api.TaggedValue{Type: api.TypeString, Value: s}, nil

	case api.TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected bool, got %T", class, property, raw)
		}
		return api.TaggedValue{Type: api.TypeBool, Value: b}, nil

	case api.TypeFloat32, api.TypeFloat64:
		f, ok := asFloat(raw)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected number, got %T", class, property, raw)
		}
		return api.TaggedValue{Type: wantType, Value: f}, nil

	case api.TypeInt32, api.TypeInt64:
		f, ok := asFloat(raw)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected integer, got %T", class, property, raw)
		}
		return api.TaggedValue{Type: wantType, Value: int64(f)}, nil

	case api.TypeEnum:
		f, ok := asFloat(raw)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected enum ordinal, got %T", class, property, raw)
		}
		return api.TaggedValue{Type: api.TypeEnum, Value: uint32(f)}, nil

	case api.TypeVector3:
		v, err := resolveVector3(raw)
		if err != nil {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: %w", class, property, err)
		}
		return api.TaggedValue{Type: api.TypeVector3, Value: v}, nil

	case api.TypeColor3:
		c, err := resolveColor3(raw)
		if err != nil {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: %w", class, property, err)
		}
		return api.TaggedValue{Type: api.TypeColor3, Value: c}, nil

	case api.TypeUDim2:
		u, err := resolveUDim2(raw)
		if err != nil {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: %w", class, property, err)
		}
		return api.TaggedValue{Type: api.TypeUDim2, Value: u}, nil

	case api.TypeTags:
		items, ok := raw.([]any)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected array, got %T", class, property, raw)
		}
		tags := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return api.TaggedValue{}, fmt.Errorf("%s.%s: tag entries must be strings", class, property)
			}
			tags = append(tags, s)
		}
		return api.TaggedValue{Type: api.TypeTags, Value: tags}, nil

	case api.TypeAttributes:
		m, ok := raw.(map[string]any)
		if !ok {
			return api.TaggedValue{}, fmt.Errorf("%s.%s: expected object, got %T", class, property, raw)
		}
		resolved := make(map[string]api.TaggedValue, len(m))
		for k, v := range m {
			resolved[k] = guessScalar(v)
		}
		return api.TaggedValue{Type: api.TypeAttributes, Value: resolved}, nil

	default:
		return api.TaggedValue{}, fmt.Errorf("%s.%s: unsupported type tag %q", class, property, wantType)
	}
}

// guessScalar resolves an attribute map entry without a class/property to
// anchor against, picking the narrowest TaggedValue type the JSON decoder's
// own type already tells us.
func guessScalar(v any) api.TaggedValue {
	switch t := v.(type) {
	case string:
		return api.TaggedValue{Type: api.TypeString, Value: t}
	case bool:
		return api.TaggedValue{Type: api.TypeBool, Value: t}
	case float64:
		return api.TaggedValue{Type: api.TypeFloat64, Value: t}
	default:
		return api.TaggedValue{Type: api.TypeString, Value: fmt.Sprintf("%v", t)}
	}
}

func asFloat(raw any) (float64, bool) {
	f, ok := raw.(float64)
	return f, ok
}

func resolveVector3(raw any) (api.Vector3, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return api.Vector3{}, fmt.Errorf("expected object with x/y/z")
	}
	x, _ := asFloat(m["x"])
	y, _ := asFloat(m["y"])
	z, _ := asFloat(m["z"])
	return api.Vector3{X: x, Y: y, Z: z}, nil
}

func resolveColor3(raw any) (api.Color3, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return api.Color3{}, fmt.Errorf("expected object with r/g/b")
	}
	r, _ := asFloat(m["r"])
	g, _ := asFloat(m["g"])
	b, _ := asFloat(m["b"])
	return api.Color3{R: r, G: g, B: b}, nil
}

func resolveUDim2(raw any) (api.UDim2, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return api.UDim2{}, fmt.Errorf("expected object with x_scale/x_offset/y_scale/y_offset")
	}
	xs, _ := asFloat(m["x_scale"])
	xo, _ := asFloat(m["x_offset"])
	ys, _ := asFloat(m["y_scale"])
	yo, _ := asFloat(m["y_offset"])
	return api.UDim2{XScale: xs, XOffset: int32(xo), YScale: ys, YOffset: int32(yo)}, nil
}

// Package api defines the wire types shared by the HTTP transport, the CLI,
// and project files: tagged property values, snapshots, change records, and
// the project configuration schema.
package api

// TaggedValue is a typed property value as it crosses the wire (HTTP JSON,
// project files, data sidecars). Type is one of the constants below; Value
// holds the corresponding Go representation after type resolution.
type TaggedValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Recognized TaggedValue.Type tags. This is the closed set of property types
// the reflection database resolves raw JSON/sidecar values into; it is not
// meant to be exhaustive of every engine type, only the ones exercised by
// the classes in internal/reflection's database.
const (
	TypeString     = "String"
	TypeBool       = "Bool"
	TypeFloat32    = "Float32"
	TypeFloat64    = "Float64"
	TypeInt32      = "Int32"
	TypeInt64      = "Int64"
	TypeVector3    = "Vector3"
	TypeColor3     = "Color3"
	TypeUDim2      = "UDim2"
	TypeEnum       = "Enum"
	TypeTags       = "Tags"
	TypeAttributes = "Attributes"
)

// Vector3 is the wire shape for TypeVector3 values.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color3 is the wire shape for TypeColor3 values (0..1 per channel).
type Color3 struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// UDim2 is the wire shape for TypeUDim2 values.
type UDim2 struct {
	XScale  float64 `json:"x_scale"`
	XOffset int32   `json:"x_offset"`
	YScale  float64 `json:"y_scale"`
	YOffset int32   `json:"y_offset"`
}

// Package reflection holds the fixed reflection database the snapshot
// middleware consults to resolve property types and to decide whether a
// class is a Service (eligible to be a place root). It is a small, static
// table rather than the inferred-from-data concept lattice
// internal/lattice builds for Mache's domain — Argon's classes and property
// types are a closed, versioned set shipped with the engine, not something
// to infer from the project being synced (see DESIGN.md for why
// internal/lattice was not reused here).
package reflection

// ClassDescriptor describes one class in the reflection database: its
// property types and whether it is tagged Service (GLOSSARY: "Service").
type ClassDescriptor struct {
	Name       string
	Service    bool
	Properties map[string]string // property name -> api.TaggedValue Type tag
}

// database is the fixed, in-memory reflection table. It covers the classes
// exercised by the snapshot middleware and the end-to-end scenarios in
// spec.md §8; it is not a complete mirror of the engine's real reflection
// database (out of scope — spec.md §1 excludes "the specific serialization
// formats for the model file", and a complete class database is equally far
// outside the projection engine's concerns).
var database = map[string]*ClassDescriptor{
	"Folder": {Name: "Folder"},
	"Script": {
		Name: "Script",
		Properties: map[string]string{
			"Source":     "String",
			"RunContext": "Enum",
			"Disabled":   "Bool",
		},
	},
	"LocalScript": {
		Name: "LocalScript",
		Properties: map[string]string{
			"Source":   "String",
			"Disabled": "Bool",
		},
	},
	"ModuleScript": {
		Name: "ModuleScript",
		Properties: map[string]string{
			"Source": "String",
		},
	},
	"StringValue": {
		Name:       "StringValue",
		Properties: map[string]string{"Value": "String"},
	},
	"LocalizationTable": {
		Name:       "LocalizationTable",
		Properties: map[string]string{"SourceLocaleId": "String"},
	},
	"Part": {
		Name: "Part",
		Properties: map[string]string{
			"Transparency": "Float32",
			"Anchored":     "Bool",
			"CanCollide":   "Bool",
			"Position":     "Vector3",
			"Size":         "Vector3",
			"Color":        "Color3",
		},
	},
	"Model":  {Name: "Model"},
	"Frame":  {Name: "Frame", Properties: map[string]string{"Size": "UDim2", "Visible": "Bool"}},
	"Sound":  {Name: "Sound", Properties: map[string]string{"SoundId": "String", "Volume": "Float32"}},
	"Camera": {Name: "Camera"},

	// Services — eligible place roots (GLOSSARY: "Service").
	"Workspace":             {Name: "Workspace", Service: true},
	"ReplicatedStorage":     {Name: "ReplicatedStorage", Service: true},
	"ReplicatedFirst":       {Name: "ReplicatedFirst", Service: true},
	"ServerScriptService":   {Name: "ServerScriptService", Service: true},
	"ServerStorage":         {Name: "ServerStorage", Service: true},
	"StarterGui":            {Name: "StarterGui", Service: true},
	"StarterPack":           {Name: "StarterPack", Service: true},
	"StarterPlayer":         {Name: "StarterPlayer", Service: true},
	"Lighting":              {Name: "Lighting", Service: true},
	"SoundService":          {Name: "SoundService", Service: true},
	"Players":               {Name: "Players", Service: true},
	"Chat":                  {Name: "Chat", Service: true},
	"TextChatService":       {Name: "TextChatService", Service: true},
	"MaterialService":       {Name: "MaterialService", Service: true},
	"HttpService":           {Name: "HttpService", Service: true},
	"TeleportService":       {Name: "TeleportService", Service: true},
	"CollectionService":     {Name: "CollectionService", Service: true},
}

// extraServices lists class names that, per original_source/src/util.rs's
// is_service, count as service-like place roots despite not carrying the
// engine's Service tag in all reflection database snapshots.
var extraServices = map[string]bool{
	"StarterPlayerScripts":    true,
	"StarterCharacterScripts": true,
}

// Get returns the descriptor for class, or nil if class is unknown to the
// database (an unknown class is not an error — the middleware falls back
// to a Folder/no-properties description).
func Get(class string) *ClassDescriptor {
	return database[class]
}

// IsService reports whether class is a Service-tagged class eligible to be
// a place root, mirroring original_source/src/util.rs's is_service.
func IsService(class string) bool {
	if d, ok := database[class]; ok && d.Service {
		return true
	}
	return extraServices[class]
}

// IsScript reports whether class is one of the three script classes,
// mirroring original_source/src/util.rs's is_script.
func IsScript(class string) bool {
	return class == "Script" || class == "LocalScript" || class == "ModuleScript"
}

// PropertyType returns the expected TaggedValue type tag for (class,
// property), and whether the property is known to the database. Unknown
// properties are not fatal (spec.md §4.2.1): the caller logs and drops them.
func PropertyType(class, property string) (string, bool) {
	d, ok := database[class]
	if !ok {
		return "", false
	}
	t, ok := d.Properties[property]
	return t, ok
}

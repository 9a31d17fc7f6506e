package operation

// API identifies which Chatwoot REST surface an operation targets.
type API string

const (
	// APIApplication is the account-scoped API authenticated with an agent token
	APIApplication API = "application"

	// APIClient is the public inbox-scoped API used by chat widgets
	APIClient API = "client"

	// APIPlatform is the administrative API of self-hosted installations
	APIPlatform API = "platform"
)

// APIs lists the supported API variants in display order.
var APIs = []API{APIApplication, APIClient, APIPlatform}

// Valid reports whether a is a known API variant.
func (a API) Valid() bool {
	switch a {
	case APIApplication, APIClient, APIPlatform:
		return true
	}
	return false
}

// OperationInfo provides metadata about a resource operation.
type OperationInfo struct {
	// API is the REST surface the operation calls
	API API

	// Resource is the resource identifier (e.g., "contact")
	Resource string

	// Operation is the operation identifier (e.g., "getAll")
	Operation string

	// DisplayName is the human-readable operation name (e.g., "Get Many")
	DisplayName string

	// Description is a human-readable description
	Description string

	// Tags classify operations (e.g., "write", "paginated", "destructive")
	Tags []string

	// Parameters describes the operation inputs
	Parameters []ParameterInfo
}

// HasTag reports whether the operation carries tag.
func (o OperationInfo) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Operation tags
const (
	TagWrite       = "write"
	TagPaginated   = "paginated"
	TagDestructive = "destructive"
)

// ParameterInfo describes an operation parameter.
type ParameterInfo struct {
	// Name is the parameter identifier
	Name string

	// Type is the parameter type (string, number, boolean, json, collection, dateTime)
	Type string

	// Description is a human-readable description
	Description string

	// Required indicates if the parameter is required
	Required bool

	// Default is the default value (nil if no default)
	Default interface{}

	// Options lists the allowed values for option parameters
	Options []string

	// Fields lists the accepted keys of a collection parameter
	Fields []string
}

// Parameter types
const (
	ParamString     = "string"
	ParamNumber     = "number"
	ParamBoolean    = "boolean"
	ParamOptions    = "options"
	ParamJSON       = "json"
	ParamCollection = "collection"
	ParamDateTime   = "dateTime"
)

package dynamic

// GuideConfig is the YAML definition of one fraud guidance tool.
type GuideConfig struct {
	// Name is the MCP tool name, e.g. "explain-shared-pii-rings".
	Name string `yaml:"name"`

	Title string `yaml:"title,omitempty"`

	// Description is what the tool explains.
	Description string `yaml:"description"`

	// Intent tells an agent when to reach for the tool.
	Intent string `yaml:"intent,omitempty"`

	// Rule is the real-time rule the guide covers, e.g. "SHARED_PII".
	Rule string `yaml:"rule,omitempty"`

	// Pattern is the batch detector name whose live matches the tool can attach.
	Pattern string `yaml:"pattern,omitempty"`

	// Severity is the risk level reported for the topology.
	Severity string `yaml:"severity,omitempty"`

	Indicators []IndicatorConfig `yaml:"indicators,omitempty"`

	// ReferenceCypher is the canonical query for the topology.
	ReferenceCypher string `yaml:"reference_cypher,omitempty"`

	ReferenceSchema *ReferenceSchemaConfig `yaml:"reference_schema,omitempty"`

	Parameters []ParameterConfig `yaml:"parameters,omitempty"`

	// Category comes from the folder the file lives in.
	Category string `yaml:"-"`
}

// IndicatorConfig is one observable signal of the topology.
type IndicatorConfig struct {
	Entity         string   `yaml:"entity"`
	SharedElements []string `yaml:"shared_elements,omitempty"`
	Anomaly        string   `yaml:"anomaly"`
}

// ReferenceSchemaConfig names the graph elements the topology touches.
type ReferenceSchemaConfig struct {
	Labels        []string `yaml:"labels,omitempty"`
	Relationships []string `yaml:"relationships,omitempty"`
}

// ParameterConfig documents a parameter of the reference query.
type ParameterConfig struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

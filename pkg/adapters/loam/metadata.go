package loam

// FunnelMetadata represents the frontmatter of a funnel document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type FunnelMetadata struct {
	ID          string         `json:"id" yaml:"id,omitempty" mapstructure:"id"`
	Title       string         `json:"title" yaml:"title,omitempty" mapstructure:"title"`
	Destination string         `json:"destination" yaml:"destination,omitempty" mapstructure:"destination"`
	Steps       []StepMetadata `json:"steps" yaml:"steps,omitempty" mapstructure:"steps"`

	// Static holds fixed Lead Record fields. Values may be any scalar; they are stringified on load.
	Static map[string]any `json:"static" yaml:"static,omitempty" mapstructure:"static"`
}

// StepMetadata is one entry of the steps list.
type StepMetadata struct {
	Kind        string   `json:"kind" yaml:"kind,omitempty" mapstructure:"kind"`
	Prompt      string   `json:"prompt" yaml:"prompt,omitempty" mapstructure:"prompt"`
	FieldKey    string   `json:"field_key" yaml:"field_key,omitempty" mapstructure:"field_key"`
	Options     []string `json:"options" yaml:"options,omitempty" mapstructure:"options"`
	Placeholder string   `json:"placeholder" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	InputHint   string   `json:"input_hint" yaml:"input_hint,omitempty" mapstructure:"input_hint"`

	// Key is accepted as a shorter alias of field_key.
	Key string `json:"key" yaml:"key,omitempty" mapstructure:"key"`
}

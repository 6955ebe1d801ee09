package model

// Step is one batch action: exactly one action name mapped to its
// parameters, e.g. {"tap": {"text": "Wi-Fi"}}.
type Step map[string]map[string]any

// DoRequest runs steps in order. StopOnError defaults to true.
type DoRequest struct {
	Steps       []Step `yaml:"steps"                 json:"steps"`
	StopOnError *bool  `yaml:"stopOnError,omitempty" json:"stopOnError,omitempty"`
}

// DoResult is the outcome of a batch.
type DoResult struct {
	OK        bool         `yaml:"ok"              json:"ok"`
	Steps     int          `yaml:"steps"           json:"steps"`
	Completed int          `yaml:"completed"       json:"completed"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results"         json:"results"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step    int    `yaml:"step"              json:"step"`
	OK      bool   `yaml:"ok"                json:"ok"`
	Action  string `yaml:"action"            json:"action"`
	Error   string `yaml:"error,omitempty"   json:"error,omitempty"`
	NodeID  string `yaml:"nodeId,omitempty"  json:"nodeId,omitempty"`
	ID      string `yaml:"id,omitempty"      json:"id,omitempty"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	Key     string `yaml:"key,omitempty"     json:"key,omitempty"`
	Nodes   int    `yaml:"nodes,omitempty"   json:"nodes,omitempty"`
	Elapsed string `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

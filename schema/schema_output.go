package schema

// CompareOutput is the top-level envelope emitted by the compare command.
// ComparisonReport fields are flattened into it.
type CompareOutput struct {
	Version  string   `json:"version"`
	Mode     RunMode  `json:"mode"`
	Ref      Resource `json:"ref"`
	Impl     Resource `json:"impl"`
	Viewport Viewport `json:"viewport"`
	ComparisonReport
	Artifacts  *ArtifactSet `json:"artifacts,omitempty"`
	DurationMs int64        `json:"durationMs"`
}

// CheckOutput extends CompareOutput with per-metric minimum violations.
type CheckOutput struct {
	CompareOutput
	Violations []CheckViolation `json:"violations"`
}

// QualityOutput is the top-level envelope emitted by the quality command.
type QualityOutput struct {
	Version  string   `json:"version"`
	Mode     RunMode  `json:"mode"`
	Input    Resource `json:"input"`
	Viewport Viewport `json:"viewport"`
	QualityReport
	DurationMs int64 `json:"durationMs"`
}

// GenerateOutput is the top-level envelope emitted by the generate command.
type GenerateOutput struct {
	Version    string   `json:"version"`
	Mode       RunMode  `json:"mode"`
	Input      Resource `json:"input"`
	Viewport   Viewport `json:"viewport"`
	Stack      string   `json:"stack"`
	Code       string   `json:"code,omitempty"`
	OutputPath string   `json:"outputPath,omitempty"`
}

// ErrorOutput is the envelope emitted on any failure. It goes to stdout so
// machine consumers always receive parseable JSON.
type ErrorOutput struct {
	Version string    `json:"version"`
	Mode    RunMode   `json:"mode"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody names the failure category and suggests a fix.
type ErrorBody struct {
	Category    string `json:"category"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// ArtifactSet lists the files written to the artifacts directory.
type ArtifactSet struct {
	Dir       string `json:"dir"`
	RefImage  string `json:"refImage,omitempty"`
	ImplImage string `json:"implImage,omitempty"`
	Heatmap   string `json:"heatmap,omitempty"`
}

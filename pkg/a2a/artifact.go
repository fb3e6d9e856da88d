package a2a

/*
Artifact is the output of a task.
*/
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Text returns the joined text of the artifact parts.
func (artifact Artifact) Text() string {
	return PartsText(artifact.Parts)
}

package models

// BatchOptions controls where a batch writes and how its browser session is opened
type BatchOptions struct {
	CreateDocument      bool   `json:"createDocument"`
	Headless            *bool  `json:"headless,omitempty"`
	OutputDir           string `json:"outputDir,omitempty" validate:"omitempty,max=4096,safepath"`
	DocumentDir         string `json:"documentDir,omitempty" validate:"omitempty,max=4096,safepath"`
	UsePersistedSession bool   `json:"usePersistedSession"`
	SessionProfilePath  string `json:"sessionProfilePath,omitempty" validate:"omitempty,max=4096,safepath"`
	SkipSeen            bool   `json:"skipSeen"`
}

// StartBatchRequest is the payload for starting a batch from the control panel.
// URLs may be given as a list, as a newline separated text block, or both.
type StartBatchRequest struct {
	URLs     []string     `json:"urls" validate:"omitempty,max=1000,dive,required,max=2048"`
	URLsText string       `json:"urlsText" validate:"omitempty,max=1048576"`
	Options  BatchOptions `json:"options"`
}

// HeadlessOr resolves the tri-state headless flag against a configured default
func (o BatchOptions) HeadlessOr(def bool) bool {
	if o.Headless == nil {
		return def
	}
	return *o.Headless
}

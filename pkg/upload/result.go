package upload

import "github.com/dmitrymomot/ueditor/pkg/state"

// Result is the outcome of a single upload in the shape the editor client
// expects. State is the literal "SUCCESS" on success and a human-readable
// message otherwise; Code always holds the machine-readable state.
type Result struct {
	Code     state.Code `json:"-"`
	State    string     `json:"state"`
	URL      string     `json:"url,omitempty"`
	Title    string     `json:"title,omitempty"`
	Original string     `json:"original,omitempty"`
	Type     string     `json:"type,omitempty"`
	Size     int64      `json:"size,omitempty"`
}

// OK reports whether the upload succeeded.
func (r Result) OK() bool {
	return r.Code == state.Success
}

// RemoteResult is one entry of a catcher batch, tagged with its source URL.
type RemoteResult struct {
	Result
	Source string `json:"source"`
}

// CatchResult aggregates a catcher batch. List keeps the input order.
type CatchResult struct {
	Code  state.Code     `json:"-"`
	State string         `json:"state"`
	List  []RemoteResult `json:"list"`
}

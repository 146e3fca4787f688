// Package state defines the outcome codes shared by the upload and listing
// operations and renders them as localized messages.
//
// Codes travel through ordinary error returns wrapped in *Error:
//
//	if err := policy.Validate(size, ext, cfg); err != nil {
//		code := state.CodeOf(err) // state.ErrSizeExceed
//	}
//
// Every code except Success is a presentation string and may be translated.
// Success always renders as the literal "SUCCESS" because the editor client
// detects success by exact string comparison.
package state

package upload

// Request is one of DirectFile, Base64Payload or RemoteSource.
type Request interface {
	isRequest()
}

// DirectFile is a multipart upload already staged on local disk by the
// request layer.
type DirectFile struct {
	TempPath     string
	OriginalName string
	// Size in bytes as reported by the request layer. A negative value means
	// unknown, in which case the staged file is stat'ed.
	Size int64
}

// Base64Payload is an inline encoded file, typically a scrawl image.
// Name falls back to DefaultBase64Name when empty.
type Base64Payload struct {
	Data string
	Name string
}

// RemoteSource is a URL the server fetches on the client's behalf.
type RemoteSource struct {
	URL string
}

func (DirectFile) isRequest()    {}
func (Base64Payload) isRequest() {}
func (RemoteSource) isRequest()  {}

// DefaultBase64Name is the original name assumed for unnamed base64 uploads.
const DefaultBase64Name = "scrawl.png"

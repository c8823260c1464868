package models

// UploadResult is one entry of a batch upload response. Exactly one of URL
// and Error is set. Type is always populated so clients can tell what kind
// of handling the file received.
type UploadResult struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// DeleteRequest identifies an asset to remove and who claims to own it.
// Accepted as JSON or form body.
type DeleteRequest struct {
	Filename string `json:"filename" form:"filename"`
	UserID   string `json:"userId" form:"userId"`
}

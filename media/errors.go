package media

import "errors"

// Sentinel errors shared by the upload and delete paths. Handlers map these
// onto HTTP status codes; per-file failures inside a batch are captured into
// the batch result instead of being returned.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoFilesProvided = errors.New("no files provided")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTranscodeFailed = errors.New("transcode failed")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

package photo

import "time"

// SetTestURL overrides the upload endpoint and timeout on an uploader.
// This should only be used in tests.
func SetTestURL(u *Uploader, uploadURL string, timeout time.Duration) {
	if uploadURL != "" {
		u.uploadURL = uploadURL
	}
	if timeout > 0 {
		u.timeout = timeout
	}
}

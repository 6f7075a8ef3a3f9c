package request

import "errors"

var (
	// ErrNotDownloadable is returned when a closed or restricted resource is requested.
	ErrNotDownloadable = errors.New("resource is not available for download")

	// ErrNoOpenRequest is returned when submitting or refreshing without an open form.
	ErrNoOpenRequest = errors.New("no download request is open")
)

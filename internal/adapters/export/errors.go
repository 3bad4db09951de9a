package export

import "errors"

// Sentinel kinds for export errors. Write failures wrap model.ErrExport.
var (
	ErrClosed = errors.New("exporter closed")
)

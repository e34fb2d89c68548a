// Package sheets appends summary rows to the external spreadsheet, one tab
// per record category.
package sheets

import "context"

// Tab names.
const (
	TabCandidates = "candidates"
	TabInterviews = "interviews"
	TabReports    = "reports"
	TabVideos     = "videos"
)

// Exporter appends a row to a tab, creating the tab if it does not exist.
type Exporter interface {
	AppendRow(ctx context.Context, tab string, row []string) error
}

package interviews

import (
	"time"

	"aihr-backend/internal/prompts"
)

const (
	noReport = "No report"
	noVideo  = "No video recorded"
)

// InterviewRow is the interviews-tab row written on finish.
func InterviewRow(iv Interview) []string {
	report := noReport
	if iv.Report != nil && *iv.Report != "" {
		report = *iv.Report
	}
	video := noVideo
	if iv.VideoURL != nil && *iv.VideoURL != "" {
		video = *iv.VideoURL
	}
	return []string{
		iv.ID,
		iv.CandidateID,
		string(iv.Status),
		orNoData(iv.Questions),
		orNoData(iv.Answers),
		report,
		video,
	}
}

// ReportRow is the reports-tab row written on finish.
func ReportRow(iv Interview, candidateName string) []string {
	report := noReport
	if iv.Report != nil && *iv.Report != "" {
		report = *iv.Report
	}
	completed := iv.UpdatedAt
	if iv.CompletedAt != nil {
		completed = *iv.CompletedAt
	}
	return []string{iv.ID, candidateName, report, completed.UTC().Format(time.RFC3339)}
}

// VideoRow is the videos-tab row written when a recording is attached.
func VideoRow(iv Interview, url string) []string {
	return []string{iv.ID, iv.CandidateID, url}
}

func orNoData(s string) string {
	if s == "" {
		return prompts.NoData
	}
	return s
}

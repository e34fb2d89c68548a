package candidates

// ExportRow is the spreadsheet row written for a new registration.
func ExportRow(c Candidate) []string {
	return []string{c.ID, c.Name, c.Email, c.Phone, c.Gender, c.InterviewLink}
}

package icebreaker

import "strings"

const querySuffix = " linkedin profile"

// BuildQuery composes the search query for a person: the trimmed name in
// double quotes, then the company verbatim, then the profile suffix.
// An empty company leaves two spaces between the name and the suffix.
func BuildQuery(name, company string) string {
	return `"` + strings.TrimSpace(name) + `" ` + company + querySuffix
}

// BuildContext joins name and company into the target-person line of the
// extraction prompt.
func BuildContext(name, company string) string {
	return strings.TrimSpace(strings.TrimSpace(name) + " " + company)
}

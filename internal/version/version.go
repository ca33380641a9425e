// Package version pins the identifiers the server reports to consumers.
package version

const (
	// Server is the release version of this tool.
	Server = "0.4.0"

	// Protocol increments whenever the shape of the web API changes in a
	// way existing consumers cannot ignore.
	Protocol = 1
)

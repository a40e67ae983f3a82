package model

// Resource identifies one of the read-only GitHub collections the relay exposes.
type Resource string

const (
	ResourceOrganizations Resource = "organizations"
	ResourceRepositories  Resource = "repositories"
	ResourceCommits       Resource = "commits"
	ResourcePullRequests  Resource = "pull_requests"
	ResourceIssues        Resource = "issues"
	ResourceMembers       Resource = "members"
	ResourceChangelogs    Resource = "changelogs"
)

// RelayParams carries the path parameters a relayed query may need. Which
// fields are required depends on the Resource.
type RelayParams struct {
	Org   string
	Owner string
	Repo  string
}

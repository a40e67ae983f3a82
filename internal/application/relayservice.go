package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// RelayService forwards a fixed set of read queries to GitHub with the
// caller's own bearer token and returns the payload untouched. It does not
// consult stored integrations.
type RelayService struct {
	github driven.GitHubClient
	logger *slog.Logger
}

// NewRelayService creates a new RelayService.
func NewRelayService(github driven.GitHubClient, logger *slog.Logger) *RelayService {
	return &RelayService{github: github, logger: logger}
}

// Organizations lists the organizations of the token's user.
func (s *RelayService) Organizations(ctx context.Context, token string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceOrganizations, token, model.RelayParams{})
}

// Repositories lists the repositories of org.
func (s *RelayService) Repositories(ctx context.Context, token, org string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceRepositories, token, model.RelayParams{Org: org})
}

// Commits lists the commits of owner/repo.
func (s *RelayService) Commits(ctx context.Context, token, owner, repo string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceCommits, token, model.RelayParams{Owner: owner, Repo: repo})
}

// PullRequests lists the pull requests of owner/repo.
func (s *RelayService) PullRequests(ctx context.Context, token, owner, repo string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourcePullRequests, token, model.RelayParams{Owner: owner, Repo: repo})
}

// Issues lists the issues of owner/repo.
func (s *RelayService) Issues(ctx context.Context, token, owner, repo string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceIssues, token, model.RelayParams{Owner: owner, Repo: repo})
}

// Members lists the members of org.
func (s *RelayService) Members(ctx context.Context, token, org string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceMembers, token, model.RelayParams{Org: org})
}

// Changelogs always returns ErrNotImplemented.
func (s *RelayService) Changelogs(ctx context.Context, token, owner, repo string) ([]byte, error) {
	return s.Fetch(ctx, model.ResourceChangelogs, token, model.RelayParams{Owner: owner, Repo: repo})
}

// Fetch relays one read of resource. Missing parameters fail with
// ErrMissingParameter before any network call; GitHub failures are wrapped
// in ErrUpstream.
func (s *RelayService) Fetch(ctx context.Context, resource model.Resource, token string, params model.RelayParams) ([]byte, error) {
	if resource == model.ResourceChangelogs {
		return nil, fmt.Errorf("%s: %w", resource, ErrNotImplemented)
	}

	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: access token", ErrMissingParameter)
	}

	path, err := resourcePath(resource, params)
	if err != nil {
		return nil, err
	}

	body, err := s.github.Get(ctx, token, path)
	if err != nil {
		s.logger.Error("github relay failed", "resource", resource, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return body, nil
}

// resourceSuffix is the last path segment of each org- or repo-scoped resource.
var resourceSuffix = map[model.Resource]string{
	model.ResourceRepositories: "repos",
	model.ResourceMembers:      "members",
	model.ResourceCommits:      "commits",
	model.ResourcePullRequests: "pulls",
	model.ResourceIssues:       "issues",
}

// resourcePath renders the REST path for resource. Parameters must be plain
// GitHub names so they cannot leave the resource's path.
func resourcePath(resource model.Resource, p model.RelayParams) (string, error) {
	switch resource {
	case model.ResourceOrganizations:
		return "user/orgs", nil
	case model.ResourceRepositories, model.ResourceMembers:
		org, err := pathName("org", p.Org)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("orgs/%s/%s", org, resourceSuffix[resource]), nil
	case model.ResourceCommits, model.ResourcePullRequests, model.ResourceIssues:
		owner, err := pathName("owner", p.Owner)
		if err != nil {
			return "", err
		}
		repo, err := pathName("repo", p.Repo)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("repos/%s/%s/%s", owner, repo, resourceSuffix[resource]), nil
	default:
		return "", fmt.Errorf("unknown resource %q", resource)
	}
}

// pathName validates value as a GitHub owner, org or repository name and
// returns it escaped for use as a single path segment.
func pathName(param, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, param)
	}
	if !isValidName(value) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidParameter, param, value)
	}
	return url.PathEscape(value), nil
}

// isValidName reports whether name uses only alphanumerics, hyphens, dots or
// underscores and is not a dot segment.
func isValidName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	for _, ch := range name {
		if !isValidNameChar(ch) {
			return false
		}
	}
	return true
}

func isValidNameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}

// Package gitlab provides an HTTP client for the GitLab API.
//
// # Overview
//
// This package provides GitLab integration for metadata enrichment,
// complementing the GitHub provider for packages hosted on GitLab.
//
// # Usage
//
//	client := gitlab.NewClient(backend, token, 24*time.Hour)
//	metrics, err := client.Fetch(ctx, "owner", "repo", false)
//
// # Authentication
//
// A GitLab personal access token is optional. Without a token, only
// public repositories can be accessed.
//
// # URL Extraction
//
// [ExtractURL] parses GitLab repository URLs from package metadata:
//
//	owner, repo, ok := gitlab.ExtractURL(pkg.ProjectURLs, pkg.HomePage)
//	if ok {
//	    // Found GitLab repository: gitlab.com/owner/repo
//	}
package gitlab

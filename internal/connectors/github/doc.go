// Package github implements a connector for GitHub repositories.
//
// The connector fetches the text files of a single repository: one
// recursive Trees API call yields every path, and matching entries are
// retrieved through the Blobs API. Repositories are addressed as
// "owner/repo" with an optional "@ref" suffix; without a ref the
// default branch is used.
//
// # Authentication
//
// A personal access token is read through the [driven.TokenProvider]
// port, normally a [StaticToken] built from the github.token config
// key. Authenticated requests get 5,000 API calls per hour; the
// unauthenticated 60/hour budget is too small to sync anything, so a
// token is required.
//
// # Rate limiting
//
// Two strategies are combined. A token bucket proactively holds
// request throughput near 1.2 requests per second, and the
// X-RateLimit-* headers on every response are tracked so the client
// can stall until the reset time once the remaining budget drops below
// a reserve. An exhausted quota surfaces as a [RateLimitError] and
// aborts the fetch.
//
// # Filtering
//
// Files are screened by glob patterns (matched against base name and
// full path), by a binary-extension list, and by a 1MB size cap.
// Directory entries, submodules, and symlinks are never fetched.
//
// # Document structure
//
// Documents are identified as github://{owner}/{repo}/blob/{ref}/{path}
// and carry the repository coordinates, blob SHA, MIME type, and web
// URL in their metadata.
package github

// Package urls provides centralized documentation links and helpers that
// build browser URLs of an instance from its API base URL.
//
// Documentation URLs are defined here as exported constants so they can be
// updated in a single location before release.
//
// Usage:
//
//	import "github.com/muurk/powerpack/internal/urls"
//
//	fmt.Printf("For more information, see: %s\n", urls.APIAuthentication)
//	fmt.Println(urls.AdminUserURL(client.BaseURL, "42"))
package urls

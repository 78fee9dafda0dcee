package unpkg

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/integrations"
)

// DefaultBaseURL is the public unpkg mirror.
const DefaultBaseURL = "https://unpkg.com"

// Client fetches manifests and files from an unpkg-style mirror.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Client for the mirror at baseURL. An empty baseURL
// selects [DefaultBaseURL]. attempts follows [integrations.NewClient].
func NewClient(baseURL string, timeout time.Duration, attempts int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(timeout, attempts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the mirror base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// PackageURL returns <registry>/<name>@<version>, the canonical source URL of
// a package version.
func (c *Client) PackageURL(name, version string) string {
	return c.baseURL + "/" + name + "@" + url.PathEscape(version)
}

// FileURL returns the URL of path inside the given package version.
func (c *Client) FileURL(name, version, path string) string {
	return c.PackageURL(name, version) + "/" + strings.TrimPrefix(path, "/")
}

// FetchManifest fetches package.json for name at versionOrTag.
func (c *Client) FetchManifest(ctx context.Context, name, versionOrTag string) (*Manifest, error) {
	raw, err := c.GetBytes(ctx, c.FileURL(name, versionOrTag, "package.json"))
	if err != nil {
		return nil, err
	}
	return ParseManifest(raw)
}

// ResolveVersion returns the exact version the mirror resolves versionOrTag to.
func (c *Client) ResolveVersion(ctx context.Context, name, versionOrTag string) (string, error) {
	m, err := c.FetchManifest(ctx, name, versionOrTag)
	if err != nil {
		return "", err
	}
	if m.Version == "" {
		return "", sterrors.New(sterrors.ErrCodeInvalidManifest, "manifest for %s@%s has no version", name, versionOrTag)
	}
	return m.Version, nil
}

// FetchFile downloads the raw contents of path inside name@version.
func (c *Client) FetchFile(ctx context.Context, name, version, path string) ([]byte, error) {
	return c.GetBytes(ctx, c.FileURL(name, version, path))
}

// ParseManifest decodes a package.json document, keeping the raw bytes.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeInvalidManifest, err, "decode package.json")
	}
	m.Raw = raw
	return &m, nil
}

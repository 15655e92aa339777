// Package githubapi is a minimal client for the two GitHub REST calls the
// release pipeline needs: creating a release and uploading its assets.
package githubapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// Client talks to the GitHub REST API for one repository.
type Client struct {
	httpClient *http.Client
	apiURL     string
	uploadURL  string
	token      string
	owner      string
	repo       string
	logger     zerolog.Logger
}

// Release describes the release to create.
type Release struct {
	TagName         string `json:"tag_name"`
	TargetCommitish string `json:"target_commitish"`
	Name            string `json:"name"`
	Body            string `json:"body"`
	Prerelease      bool   `json:"prerelease"`
}

// New creates a client for the given repository, authenticated with token
func New(token, owner, repo string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiURL:     "https://api.github.com",
		uploadURL:  "https://uploads.github.com",
		token:      token,
		owner:      owner,
		repo:       repo,
		logger:     logging.GetLogger("githubapi"),
	}
}

// WithEndpoints overrides the API hosts, used by tests
func (c *Client) WithEndpoints(apiURL, uploadURL string, httpClient *http.Client) *Client {
	c.apiURL = apiURL
	c.uploadURL = uploadURL
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// CreateRelease creates a release and returns its id.
func (c *Client) CreateRelease(rel Release) (int64, error) {
	c.logger.Info().Str("tag", rel.TagName).Str("commit", rel.TargetCommitish).Msg("Creating release")

	payload, err := json.Marshal(rel)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternal, "cannot encode release")
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases", c.apiURL, c.owner, c.repo)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternal, "cannot build release request")
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return 0, err
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, errors.Wrap(err, errors.ErrNetwork, "unexpected create-release response")
	}

	c.logger.Info().Int64("id", created.ID).Msg("Release created")
	return created.ID, nil
}

// UploadAsset attaches the file at path to the release under the given
// asset name.
func (c *Client) UploadAsset(releaseID int64, name, mime, path string) error {
	c.logger.Info().Str("asset", name).Str("path", path).Msg("Uploading release asset")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrNotFound, "release asset %s does not exist", path)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot read release asset %s", path)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets?name=%s",
		c.uploadURL, c.owner, c.repo, releaseID, url.QueryEscape(name))
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot build upload request")
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", mime)

	_, err = c.do(req)
	return err
}

// do executes a request and returns the response body, mapping transport
// failures and non-2xx statuses to NETWORK errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNetwork, "request to %s failed", req.URL.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNetwork, "cannot read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf(errors.ErrNetwork, "%s %s returned %s", req.Method, req.URL.Path, resp.Status).
			WithDetail("body", string(body))
	}

	return body, nil
}

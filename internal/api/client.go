package api

import (
	"fmt"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// restGetter is the part of the go-gh REST client this package uses.
type restGetter interface {
	Get(path string, response interface{}) error
}

type Client struct {
	rest  restGetter
	owner string
	repo  string
}

func NewClient(owner, repo string) (*Client, error) {
	rest, err := ghAPI.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	return &Client{rest: rest, owner: owner, repo: repo}, nil
}

func (c *Client) RepoNWO() string {
	return fmt.Sprintf("%s/%s", c.owner, c.repo)
}

func (c *Client) repoPath(path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", c.owner, c.repo, path)
}

func (c *Client) Get(path string, result interface{}) error {
	return c.rest.Get(c.repoPath(path), result)
}

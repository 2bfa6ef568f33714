package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Content is one entry of the repository contents API.
type Content struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
}

func contentsPath(path, ref string) string {
	p := "contents/" + strings.TrimPrefix(path, "/")
	if ref != "" {
		p += "?" + url.Values{"ref": {ref}}.Encode()
	}
	return p
}

// GetContents lists a directory, or returns a single entry for a file.
func (c *Client) GetContents(path, ref string) ([]Content, error) {
	var raw json.RawMessage
	if err := c.Get(contentsPath(path, ref), &raw); err != nil {
		return nil, fmt.Errorf("get contents %s: %w", path, err)
	}
	return parseContents(raw)
}

// GetFile returns the decoded bytes of a file.
func (c *Client) GetFile(path, ref string) ([]byte, error) {
	var content Content
	if err := c.Get(contentsPath(path, ref), &content); err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}
	if content.Type != "file" {
		return nil, fmt.Errorf("get file %s: is a %s", path, content.Type)
	}
	return DecodeContent(content)
}

func parseContents(raw []byte) ([]Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Content
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode directory listing: %w", err)
		}
		return list, nil
	}
	var one Content
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("decode content entry: %w", err)
	}
	return []Content{one}, nil
}

// DecodeContent decodes the payload of a file entry. GitHub wraps base64
// payloads at 60 columns.
func DecodeContent(c Content) ([]byte, error) {
	switch c.Encoding {
	case "base64":
		clean := strings.NewReplacer("\n", "", "\r", "").Replace(c.Content)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.Path, err)
		}
		return data, nil
	case "", "utf-8":
		return []byte(c.Content), nil
	default:
		return nil, fmt.Errorf("decode %s: unsupported encoding %q", c.Path, c.Encoding)
	}
}

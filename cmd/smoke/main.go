// Command smoke walks a running server through register, login, create,
// update and restore, and checks the version numbers it gets back.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(method, path string, body io.Reader, contentType string, out interface{}) (int, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && len(raw) > 0 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", raw, err)
		}
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, raw)
	}
	return resp.StatusCode, nil
}

func (c *client) json(method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}
	return c.do(method, path, body, "application/json", out)
}

type note struct {
	Id      string `json:"id"`
	Content string `json:"content"`
}

type version struct {
	Version int    `json:"version"`
	Content string `json:"content"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/v1", "API base URL")
	flag.Parse()

	c := &client{baseURL: strings.TrimRight(*baseURL, "/"), http: &http.Client{Timeout: 10 * time.Second}}
	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])
	password := "smoke-password"

	color.Cyan("Note versioning smoke test against %s\n", c.baseURL)

	step("1. Register " + email)
	must(c.json(http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, nil))

	step("2. Login")
	var login struct {
		AccessToken string `json:"access_token"`
	}
	form := url.Values{"username": {email}, "password": {password}}
	must(c.do(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &login))
	c.token = login.AccessToken

	step("3. Create note")
	var n note
	must(c.json(http.MethodPost, "/notes", map[string]string{"title": "First", "content": "Hello"}, &n))

	step("4. Update note")
	must(c.json(http.MethodPut, "/notes/"+n.Id, map[string]string{"content": "Hello world"}, &n))

	step("5. Restore version 1")
	var restored version
	must(c.json(http.MethodPost, "/notes/"+n.Id+"/versions/1/restore", nil, &restored))
	expect(restored.Version == 3, "restore appended version %d, want 3", restored.Version)
	expect(restored.Content == "Hello", "restored content %q, want %q", restored.Content, "Hello")

	step("6. List versions")
	var versions []version
	must(c.json(http.MethodGet, "/notes/"+n.Id+"/versions", nil, &versions))
	expect(len(versions) == 3, "got %d versions, want 3", len(versions))
	for i, v := range versions {
		expect(v.Version == i+1, "version at %d is %d", i, v.Version)
	}

	step("7. Delete note")
	must(c.json(http.MethodDelete, "/notes/"+n.Id, nil, nil))
	status, _ := c.json(http.MethodGet, "/notes/"+n.Id+"/versions", nil, nil)
	expect(status == http.StatusNotFound, "versions after delete returned %d, want 404", status)

	color.Green("\nAll checks passed")
}

func step(name string) {
	color.Yellow("\n%s", name)
}

func must(status int, err error) {
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %d", status)
}

func expect(ok bool, format string, args ...interface{}) {
	if !ok {
		color.Red("Check failed: "+format, args...)
		os.Exit(1)
	}
}

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// User is the directory's view of an account: just enough to resolve
// notification recipients. Auth and profile data live in the account
// service.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Directory is the external user directory the resolver reads from.
type Directory interface {
	AllUsers(ctx context.Context) ([]User, error)
	FindUser(ctx context.Context, id string) (*User, error)
}

// HTTPDirectory talks to the account service over JSON HTTP.
type HTTPDirectory struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

func (d *HTTPDirectory) AllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := d.getJSON(ctx, "/api/v1/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *HTTPDirectory) FindUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := d.getJSON(ctx, "/api/v1/users/"+id, &user)
	if err != nil {
		var httpErr *statusError
		if errors.As(err, &httpErr) && httpErr.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("directory request failed: status=%d, body=%s", e.code, e.body)
}

func (d *HTTPDirectory) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}

package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeDirectory struct {
	users []User
}

func (f *fakeDirectory) AllUsers(ctx context.Context) ([]User, error) {
	return f.users, nil
}

func (f *fakeDirectory) FindUser(ctx context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func TestResolveByRoleIsCaseInsensitive(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{users: []User{
		{ID: "u1", Role: "Owner"},
		{ID: "u2", Role: " owner "},
		{ID: "u3", Role: "architect"},
	}})

	ids, err := resolver.ResolveByRole(context.Background(), []string{"  OWNER "})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 owners, got %v", ids)
	}
}

func TestResolveByRoleUnionDeduplicates(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{users: []User{
		{ID: "u1", Role: "owner"},
		{ID: "u2", Role: "admin"},
		{ID: "u3", Role: "viewer"},
	}})

	ids, err := resolver.ResolveByRole(context.Background(), []string{"owner", "admin", "owner"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected union of 2 users, got %v", ids)
	}
}

func TestResolveByRoleNoMatchIsEmptyNotError(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{users: []User{{ID: "u1", Role: "owner"}}})

	for _, roles := range [][]string{nil, {}, {""}, {"   "}, {"nonexistent-role"}} {
		ids, err := resolver.ResolveByRole(context.Background(), roles)
		if err != nil {
			t.Fatalf("roles %v: unexpected error: %v", roles, err)
		}
		if ids == nil {
			t.Fatalf("roles %v: result must be empty, not nil", roles)
		}
		if len(ids) != 0 {
			t.Errorf("roles %v: expected no recipients, got %v", roles, ids)
		}
	}
}

func TestResolveByID(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{users: []User{{ID: "u1", Role: "owner"}}})

	id, ok, err := resolver.ResolveByID(context.Background(), "u1")
	if err != nil || !ok || id != "u1" {
		t.Errorf("expected u1 found, got id=%q ok=%v err=%v", id, ok, err)
	}

	_, ok, err = resolver.ResolveByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("absent user must not be an error: %v", err)
	}
	if ok {
		t.Error("absent user reported as found")
	}

	_, ok, err = resolver.ResolveByID(context.Background(), "  ")
	if err != nil || ok {
		t.Errorf("blank id should resolve to nothing, got ok=%v err=%v", ok, err)
	}
}

func TestHTTPDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/users":
			json.NewEncoder(w).Encode([]User{{ID: "u1", Role: "owner"}, {ID: "u2", Role: "admin"}})
		case strings.HasPrefix(r.URL.Path, "/api/v1/users/"):
			id := strings.TrimPrefix(r.URL.Path, "/api/v1/users/")
			if id != "u1" {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(User{ID: "u1", Role: "owner"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL)

	users, err := dir.AllUsers(context.Background())
	if err != nil {
		t.Fatalf("AllUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	user, err := dir.FindUser(context.Background(), "u1")
	if err != nil || user == nil || user.Role != "owner" {
		t.Errorf("expected u1/owner, got %+v err=%v", user, err)
	}

	missing, err := dir.FindUser(context.Background(), "u9")
	if err != nil {
		t.Fatalf("404 must map to absent, not error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

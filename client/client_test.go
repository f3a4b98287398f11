package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/wire"
)

// pagedProgramServer serves a fixed number of programs page by page and
// records the page requests it saw.
func pagedProgramServer(t *testing.T, total int) (*httptest.Server, *[]string) {
	t.Helper()
	var pages []string

	mux := http.NewServeMux()
	mux.HandleFunc("/programs", func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		pages = append(pages, fmt.Sprintf("%d+%d", skip, limit))

		var out []wire.Program
		for i := skip; i < total && i < skip+limit; i++ {
			out = append(out, wire.Program{
				ID:             wire.Identifier(fmt.Sprintf("object-%03d", i)),
				ProgramRequest: wire.ProgramRequest{ProgramName: fmt.Sprintf("program-%03d", i)},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
	return httptest.NewServer(mux), &pages
}

// Pagination totality: the concatenation of all pages arrives in order
// without duplicates or omissions.
func TestGetAllProgramsPagination(t *testing.T) {
	for _, total := range []int{0, 1, 49, 50, 120} {
		server, pages := pagedProgramServer(t, total)

		c, err := New(server.URL, nil)
		require.NoError(t, err)

		programs, err := c.GetAllPrograms(context.Background(), NoFilter)
		require.NoError(t, err)
		require.Len(t, programs, total, "total=%d", total)

		seen := make(map[wire.Identifier]bool)
		for i, p := range programs {
			assert.Equal(t, wire.Identifier(fmt.Sprintf("object-%03d", i)), p.ID())
			assert.False(t, seen[p.ID()], "duplicate %s", p.ID())
			seen[p.ID()] = true
		}

		// A total that is an exact multiple of the page size costs one
		// extra empty request.
		expectedPages := total/DefaultPageSize + 1
		assert.Len(t, *pages, expectedPages, "total=%d", total)

		server.Close()
	}
}

func TestProblemErrorSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(wire.Problem{Status: 404, Title: "Not Found"})
	}))
	defer server.Close()

	c, err := New(server.URL, nil)
	require.NoError(t, err)

	_, err = c.GetProgram(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
}

// Token type must be Bearer, case-insensitively.
func TestTokenTypeMustBeBearer(t *testing.T) {
	issue := func(tokenType string) *httptest.Server {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/token", func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(wire.TokenResponse{
				AccessToken: "tok", TokenType: tokenType, ExpiresIn: 3600,
			})
		})
		mux.HandleFunc("/programs", func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode([]wire.Program{})
		})
		return httptest.NewServer(mux)
	}

	server := issue("mac")
	defer server.Close()
	c, err := New(server.URL, NewCredentials("id", "secret"))
	require.NoError(t, err)
	_, err = c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
	assert.ErrorIs(t, err, ErrTokenNotBearer)

	// "bearer" and "BEARER" are fine.
	for _, tokenType := range []string{"bearer", "BEARER", "Bearer"} {
		server := issue(tokenType)
		c, err := New(server.URL, NewCredentials("id", "secret"))
		require.NoError(t, err)
		_, err = c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
		assert.NoError(t, err, tokenType)
		server.Close()
	}
}

// The client sends Basic credentials to the token endpoint and reuses the
// cached token until it nears expiry.
func TestTokenCaching(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.Equal(t, "client_credentials", r.FormValue("grant_type"))
		tokenCalls++
		json.NewEncoder(w).Encode(wire.TokenResponse{
			AccessToken: fmt.Sprintf("tok-%d", tokenCalls), TokenType: "Bearer", ExpiresIn: 3600,
		})
	})
	mux.HandleFunc("/programs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]wire.Program{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, NewCredentials("id", "secret"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenCalls)
}

// An expired token is refreshed before the next request.
func TestTokenRefreshAfterExpiry(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, _ *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(wire.TokenResponse{
			AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 1,
		})
	})
	mux.HandleFunc("/programs", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]wire.Program{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	creds := NewCredentials("id", "secret")
	creds.RefreshMargin = 0
	c, err := New(server.URL, creds)
	require.NoError(t, err)

	_, err = c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, tokenCalls)
}

func TestAuthErrorSurface(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(wire.OAuthError{ErrorType: wire.OAuthInvalidClient})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, NewCredentials("id", "wrong"))
	require.NoError(t, err)

	_, err = c.GetPrograms(context.Background(), NoFilter, Pagination{Limit: 50})
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, wire.OAuthInvalidClient, authErr.OAuth.ErrorType)
}

// Target filters encode as targetType/targetValues query parameters.
func TestFilterQueryEncoding(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/programs", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "GROUP", r.URL.Query().Get("targetType"))
		assert.Equal(t, []string{"Group-1", "Group-2"}, r.URL.Query()["targetValues"])
		json.NewEncoder(w).Encode([]wire.Program{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, nil)
	require.NoError(t, err)
	_, err = c.GetPrograms(context.Background(),
		FilterByGroup("Group-1", "Group-2"), Pagination{Limit: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, gotQuery)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInPersistsTokenPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = fmt.Fprint(w, `{"status":"ok","data":{"access_token":"A1","refresh_token":"R1"}}`)
	}))
	defer server.Close()

	store := &memoryTokenStore{}
	client := NewClient(server.URL, store, nil, nil)

	require.NoError(t, client.SignIn(context.Background(), "a@b.com", "hunter2"))

	pair, has := store.current()
	require.True(t, has)
	assert.Equal(t, domain.TokenPair{Access: "A1", Refresh: "R1"}, pair)
}

func TestSignInRejectsMissingTokenFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"status":"ok","data":{"access_token":""}}`)
	}))
	defer server.Close()

	store := &memoryTokenStore{}
	client := NewClient(server.URL, store, nil, nil)

	err := client.SignIn(context.Background(), "a@b.com", "hunter2")
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing token fields")

	_, has := store.current()
	assert.False(t, has)
}

func TestSignInSurfacesEnvelopeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"status":"error","message":"invalid credentials"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, &memoryTokenStore{}, nil, nil)

	err := client.SignIn(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestCreateTeamDecodesServerAssignedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams", r.URL.Path)
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		_, _ = fmt.Fprint(w, `{"status":"ok","data":{"id":42,"name":"Platform","department":"Engineering"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, storeWith(domain.TokenPair{Access: "A1", Refresh: "R1"}), nil, nil)

	team, err := client.CreateTeam(context.Background(), domain.Team{Name: "Platform", Department: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), team.ID)
	assert.Equal(t, "Platform", team.Name)
}

func TestAddMemberPostsToTeamScopedPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/7/members", r.URL.Path)
		_, _ = fmt.Fprint(w, `{"status":"ok","data":{"id":11,"team_id":7,"email":"a@b.com","role":"MEMBER"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, storeWith(domain.TokenPair{Access: "A1", Refresh: "R1"}), nil, nil)

	member, err := client.AddMember(context.Background(), domain.TeamMember{TeamID: 7, Email: "a@b.com", Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, int64(11), member.ID)
	assert.Equal(t, int64(7), member.TeamID)
	assert.Equal(t, domain.RoleMember, member.Role)
}

func TestAuthFailureAfterRetryWrapsSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			_, _ = fmt.Fprint(w, `{"status":"ok","data":{"access_token":"A2","refresh_token":"R2"}}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, storeWith(domain.TokenPair{Access: "A1", Refresh: "R1"}), nil, nil)

	_, err := client.Teams(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestDeleteTeamTolerantOfEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/teams/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, storeWith(domain.TokenPair{Access: "A1", Refresh: "R1"}), nil, nil)

	require.NoError(t, client.DeleteTeam(context.Background(), 7))
}

func TestTeamsDecodesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"status":"ok","data":[{"id":1,"name":"One"},{"id":2,"name":"Two"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, storeWith(domain.TokenPair{Access: "A1", Refresh: "R1"}), nil, nil)

	teams, err := client.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "One", teams[0].Name)
	assert.Equal(t, int64(2), teams[1].ID)
}

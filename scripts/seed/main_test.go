package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPostsSampleCatalog(t *testing.T) {
	var (
		mu    sync.Mutex
		calls = map[string]int{}
		seq   int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls[r.URL.Path]++
		seq++

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if r.URL.Path == "/subjects" {
			assert.NotEmpty(t, payload["semester_id"])
			assert.NotEmpty(t, payload["faculty_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, seq)
	}))
	defer server.Close()

	require.NoError(t, seed(&client{http: server.Client(), base: server.URL}))
	assert.Equal(t, map[string]int{
		"/departments": 1,
		"/courses":     1,
		"/semesters":   1,
		"/faculties":   3,
		"/classrooms":  2,
		"/subjects":    3,
	}, calls)
}

func TestPostSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":"INSUFFICIENT_RESOURCES","message":"need at least one classroom"}}`)
	}))
	defer server.Close()

	c := &client{http: server.Client(), base: server.URL}
	_, err := c.post("/generate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT_RESOURCES")
}

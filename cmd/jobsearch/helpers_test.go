package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

const testJobItems = `{"public": true, "sorted": false, "jobItems": [
	{"id": 1, "badgeLetters": "AC", "title": "Go Developer", "company": "Acme", "relevanceScore": 90, "daysAgo": 5},
	{"id": 2, "badgeLetters": "IN", "title": "Site Reliability Engineer", "company": "Initech", "relevanceScore": 80, "daysAgo": 1},
	{"id": 3, "badgeLetters": "GL", "title": "Platform Engineer", "company": "Globex", "relevanceScore": 70, "daysAgo": 9},
	{"id": 4, "badgeLetters": "HO", "title": "Backend Engineer", "company": "Hooli", "relevanceScore": 60, "daysAgo": 2},
	{"id": 5, "badgeLetters": "UM", "title": "Data Engineer", "company": "Umbrella", "relevanceScore": 50, "daysAgo": 3},
	{"id": 6, "badgeLetters": "SO", "title": "Staff Engineer", "company": "Soylent", "relevanceScore": 40, "daysAgo": 4},
	{"id": 7, "badgeLetters": "VA", "title": "DevOps Engineer", "company": "Vandelay", "relevanceScore": 30, "daysAgo": 6},
	{"id": 8, "badgeLetters": "WA", "title": "Security Engineer", "company": "Wayne", "relevanceScore": 20, "daysAgo": 7}
]}`

// newTestAPI serves job 1 through 8, a 404 for anything else, and testJobItems for every search.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api" && r.URL.Query().Has("search"):
			_, _ = w.Write([]byte(testJobItems))
		case len(r.URL.Path) == len("/api/1") && strings.HasPrefix(r.URL.Path, "/api/") && r.URL.Path[5] >= '1' && r.URL.Path[5] <= '8':
			id := r.URL.Path[5:]
			_, _ = w.Write([]byte(`{"public": true, "jobItem": {"id": ` + id + `, "title": "Job ` + id + `", "company": "Acme", "description": "<p>Write <b>Go</b></p>", "qualifications": ["Go"]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"description": "Not found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// execute runs the root command in-process with fresh flag values.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	configPath, verbose, apiURL, storeBackend, storePath = "", false, "", "", ""
	searchSort, searchPage = "relevant", 1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// baseArgs points a command at server and a throwaway bookmark file.
func baseArgs(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	return []string{
		"--api-url", server.URL + "/api",
		"--store", "file",
		"--store-path", filepath.Join(t.TempDir(), "storage.json"),
	}
}

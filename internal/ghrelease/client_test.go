package ghrelease

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, mux
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient("test-token",
		WithBaseURLs(server.URL, server.URL),
		WithHTTPClient(server.Client()),
		WithLogger(arbor.NewNoOpLogger()),
	)
	require.NoError(t, err)
	return client
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		repo    string
		owner   string
		name    string
		wantErr bool
	}{
		{repo: "slaclab/aes-stream-drivers", owner: "slaclab", name: "aes-stream-drivers"},
		{repo: "owner/name", owner: "owner", name: "name"},
		{repo: "no-slash", wantErr: true},
		{repo: "too/many/parts", wantErr: true},
		{repo: "/name", wantErr: true},
		{repo: "owner/", wantErr: true},
		{repo: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			owner, name, err := SplitRepo(tt.repo)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorContains(t, err, "token is required")
}

func TestLogin(t *testing.T) {
	server, mux := newTestServer(t)
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"login": "octocat"}`)
	})

	login, err := newTestClient(t, server).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
}

func TestUploadReleaseAsset(t *testing.T) {
	dir := t.TempDir()
	assetPath := filepath.Join(dir, "datadev.ko")
	require.NoError(t, os.WriteFile(assetPath, []byte("fake kernel module"), 0644))

	server, mux := newTestServer(t)
	mux.HandleFunc("/repos/slaclab/aes-stream-drivers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1, "full_name": "slaclab/aes-stream-drivers"}`)
	})
	mux.HandleFunc("/repos/slaclab/aes-stream-drivers/releases/tags/v5.16.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "tag_name": "v5.16.0"}`)
	})
	mux.HandleFunc("/repos/slaclab/aes-stream-drivers/releases/42/assets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "datadev.ko", r.URL.Query().Get("name"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "fake kernel module", string(body))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 7, "name": "datadev.ko"}`)
	})

	client := newTestClient(t, server)
	asset, err := client.UploadReleaseAsset(context.Background(), "slaclab/aes-stream-drivers", "v5.16.0", assetPath)
	require.NoError(t, err)
	assert.Equal(t, "datadev.ko", asset.GetName())
}

func TestUploadReleaseAssetMissingRelease(t *testing.T) {
	server, mux := newTestServer(t)
	mux.HandleFunc("/repos/slaclab/aes-stream-drivers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1}`)
	})
	mux.HandleFunc("/repos/slaclab/aes-stream-drivers/releases/tags/v9.9.9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	client := newTestClient(t, server)
	_, err := client.UploadReleaseAsset(context.Background(), "slaclab/aes-stream-drivers", "v9.9.9", "unused")
	assert.ErrorContains(t, err, "failed to resolve release 'v9.9.9'")
}

func TestUploadReleaseAssetMissingRepository(t *testing.T) {
	server, mux := newTestServer(t)
	mux.HandleFunc("/repos/slaclab/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	client := newTestClient(t, server)
	_, err := client.UploadReleaseAsset(context.Background(), "slaclab/gone", "v1.0.0", "unused")
	assert.ErrorContains(t, err, "failed to resolve repository slaclab/gone")
}

func TestUploadReleaseAssetInvalidRepo(t *testing.T) {
	server, mux := newTestServer(t)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for invalid repo: %s", r.URL.Path)
	})

	client := newTestClient(t, server)
	_, err := client.UploadReleaseAsset(context.Background(), "not-a-repo", "v1.0.0", "unused")
	assert.ErrorContains(t, err, "invalid repository")
}

func TestUploadAssetMissingFile(t *testing.T) {
	server, mux := newTestServer(t)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for missing file: %s", r.URL.Path)
	})

	client := newTestClient(t, server)
	_, err := client.UploadAsset(context.Background(), "slaclab", "aes-stream-drivers", 42, filepath.Join(t.TempDir(), "missing.ko"))
	assert.ErrorContains(t, err, "failed to open asset file")
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/modules/projects"
	"github.com/aristath/stockscorer/internal/reliability"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string]int64
}

func (m *memStore) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	n, err := io.Copy(io.Discard, body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = n
	return err
}

func (m *memStore) List(_ context.Context, prefix string) ([]reliability.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reliability.ObjectInfo
	for key, size := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, reliability.ObjectInfo{Key: key, Size: size})
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type noProjects struct{}

func (noProjects) List(context.Context) ([]projects.Document, error) {
	return []projects.Document{}, nil
}

func setupRouter(service *reliability.BackupService) *chi.Mux {
	h := NewHandlers(service, zerolog.New(nil).Level(zerolog.Disabled))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func TestBackupsDisabled(t *testing.T) {
	router := setupRouter(nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/api/backups", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, method)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, reliability.ErrBackupsDisabled.Error(), resp["error"])
	}
}

func TestCreateAndListBackups(t *testing.T) {
	store := &memStore{objects: make(map[string]int64)}
	service := reliability.NewBackupService(store, noProjects{}, "", zerolog.New(nil).Level(zerolog.Disabled))
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/backups", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var info reliability.BackupInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, strings.HasPrefix(info.Key, "stockscorer-backup-"))

	req = httptest.NewRequest(http.MethodGet, "/api/backups", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Backups []reliability.BackupInfo `json:"backups"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, info.Key, resp.Backups[0].Key)
}

package keepalive

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"verifybot/stats"
)

type fixedSource stats.Snapshot

func (f fixedSource) Last() stats.Snapshot { return stats.Snapshot(f) }

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRoutes(t *testing.T) {
	s := New(":0", fixedSource{Guilds: 3, Members: 99})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/heartbeat", http.StatusOK},
		{http.MethodHead, "/api/heartbeat", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodPost, "/api/heartbeat", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRoot_Body(t *testing.T) {
	s := New(":0", fixedSource{})

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Body.String(); got != "alive" {
		t.Errorf("body = %q, want %q", got, "alive")
	}
}

func TestStats_JSON(t *testing.T) {
	s := New(":0", fixedSource{Guilds: 3, Members: 99, HeapMB: 4.5})

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	var got stats.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Guilds != 3 || got.Members != 99 || got.HeapMB != 4.5 {
		t.Errorf("stats = %+v, want guilds 3, members 99, heap 4.5", got)
	}
}

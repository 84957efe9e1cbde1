package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hush/internal/adapters/signal"
	"github.com/dkeye/Hush/internal/app"
	"github.com/dkeye/Hush/internal/config"
	"github.com/dkeye/Hush/internal/core"
)

func newTestRouter(t *testing.T) (*gin.Engine, *app.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:          "release",
		Secret:        "test-secret",
		ReadLimit:     32768,
		SweepInterval: time.Minute,
		EvictGrace:    50 * time.Millisecond,
		MsgRateLimit:  100,
		MsgRateWindow: time.Second,
	}
	engine := app.NewEngine(core.NewRoomStore(), core.NewMemberStore(), core.NewMessageLog(), app.NewRegistry(), cfg.EvictGrace)
	ctl := signal.NewController(engine, cfg)
	return SetupRouter(context.Background(), cfg, engine, ctl), engine
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateRoomEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := postJSON(t, r, "/api/rooms/create", gin.H{
		"roomName": "R1", "passphrase": "sesame1", "createdBy": "u1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		RoomID   string `json:"roomId"`
		RoomName string `json:"roomName"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RoomID)
	assert.Equal(t, "R1", resp.RoomName)
}

func TestCreateRoomValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name    string
		body    gin.H
		wantErr string
	}{
		{
			"short passphrase",
			gin.H{"roomName": "R1", "passphrase": "12345", "createdBy": "u1"},
			"Passphrase must be at least 6 characters",
		},
		{
			"passphrase beyond hasher limit",
			gin.H{"roomName": "R1", "passphrase": strings.Repeat("x", 73), "createdBy": "u1"},
			"Passphrase must be at most 72 characters",
		},
		{
			"missing fields",
			gin.H{"roomName": "R1"},
			"Missing required fields",
		},
		{
			"empty body",
			gin.H{},
			"Missing required fields",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, r, "/api/rooms/create", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp["error"])
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	r, engine := newTestRouter(t)
	room, serr := engine.CreateRoom("R1", "sesame1", "u1")
	require.Nil(t, serr)

	rr := postJSON(t, r, "/api/rooms/verify", gin.H{"roomId": room.ID, "passphrase": "sesame1"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Valid    bool   `json:"valid"`
		RoomName string `json:"roomName"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "R1", resp.RoomName)

	rr = postJSON(t, r, "/api/rooms/verify", gin.H{"roomId": room.ID, "passphrase": "nope"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)

	rr = postJSON(t, r, "/api/rooms/verify", gin.H{"roomId": "missing", "passphrase": "sesame1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRoomsEndpoint(t *testing.T) {
	r, engine := newTestRouter(t)
	_, serr := engine.CreateRoom("R1", "sesame1", "u1")
	require.Nil(t, serr)
	_, serr = engine.CreateRoom("R2", "sesame2", "u2")
	require.Nil(t, serr)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Rooms, 2)
	for _, info := range resp.Rooms {
		assert.Zero(t, info.UserCount)
	}
}

func TestClientTokenMiddleware(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var tokenSet bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "ct" && c.Value != "" {
			tokenSet = true
		}
	}
	assert.True(t, tokenSet, "client token cookie must be issued")
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/session"
)

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func newTestWeb(t *testing.T) (*webServer, *httptest.Server) {
	t.Helper()
	srv := newWebServer(openStore(t))
	ts := httptest.NewServer(srv.routes(""))
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestWebSessionHistory(t *testing.T) {
	srv, ts := newTestWeb(t)

	resp := get(t, ts.URL+"/api/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))

	start := time.Date(2026, 4, 12, 7, 0, 0, 0, time.UTC)
	for i, id := range []string{"morning", "evening"} {
		strike := session.ClassifyStrike(300, 600, 200)
		require.NoError(t, srv.store.Save(context.Background(), session.Summary{
			ID:        id,
			StartedAt: start.Add(time.Duration(i) * 12 * time.Hour),
			EndedAt:   start.Add(time.Duration(i)*12*time.Hour + 20*time.Minute),
			Duration:  "00:20:00",
			Steps:     3000 + i,
			Pressure:  [3]int{300, 600, 200},
			Strike:    strike,
			Insight:   strike.Insight(),
		}))
	}

	var list []session.Summary
	resp = get(t, ts.URL+"/api/sessions?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "evening", list[0].ID)

	resp = get(t, ts.URL+"/api/sessions?limit=none")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var one session.Summary
	resp = get(t, ts.URL+"/api/sessions/morning")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&one))
	assert.Equal(t, 3000, one.Steps)
	assert.Equal(t, session.StrikeHeel, one.Strike)

	resp = get(t, ts.URL+"/api/sessions/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, ts.URL+"/api/sessions/morning/heatmap.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, session.HeatmapWidth, img.Bounds().Dx())
	assert.Equal(t, session.HeatmapHeight, img.Bounds().Dy())

	resp = get(t, ts.URL+"/api/sessions/nope/heatmap.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebLatestMetrics(t *testing.T) {
	srv, ts := newTestWeb(t)

	resp := get(t, ts.URL+"/api/metrics")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.setLatest(gait.Snapshot{StepCount: 42, Cadence: 170, Distance: 61.3})

	var snap gait.Snapshot
	resp = get(t, ts.URL+"/api/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 42, snap.StepCount)
	assert.Equal(t, 170, snap.Cadence)
}

func TestWebMetricsWebsocket(t *testing.T) {
	srv, ts := newTestWeb(t)
	srv.setLatest(gait.Snapshot{StepCount: 3})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/metrics"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snap gait.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, 3, snap.StepCount, "current value on connect")

	srv.setLatest(gait.Snapshot{StepCount: 4})
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, 4, snap.StepCount)
}

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

func newTestHandler() http.Handler {
	return NewHandler(registry.NewManager(memory.NewStore()))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func snapOf(sections ...domain.SectionSnapshot) *domain.Snapshot {
	return &domain.Snapshot{Sections: sections}
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "espalier-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("OPTIONS", "/api/diff", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPostDiff(t *testing.T) {
	handler := newTestHandler()

	body := DiffRequest{
		Old: snapOf(domain.SectionSnapshot{ID: "inbox", Items: []domain.RowSnapshot{{ID: "a"}, {ID: "b"}}}),
		New: snapOf(
			domain.SectionSnapshot{ID: "inbox", Items: []domain.RowSnapshot{{ID: "b"}, {ID: "c"}}},
			domain.SectionSnapshot{ID: "archive", Items: []domain.RowSnapshot{{ID: "a"}}},
		),
	}

	rr := doJSON(t, handler, "POST", "/api/diff", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp ScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Script, 3)
	assert.Equal(t, domain.OpRemoveRows, resp.Script[0].Kind)
	assert.Equal(t, domain.OpInsertRows, resp.Script[1].Kind)
	assert.Equal(t, domain.OpInsertSections, resp.Script[2].Kind)
	assert.Equal(t, 1, resp.Summary[domain.OpInsertSections])
}

func TestPostDiff_EmptySnapshots(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/diff", DiffRequest{})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Script)
}

func TestPostDiff_DuplicateKeys(t *testing.T) {
	handler := newTestHandler()

	body := DiffRequest{
		New: snapOf(
			domain.SectionSnapshot{ID: "dup"},
			domain.SectionSnapshot{ID: "dup"},
		),
	}

	rr := doJSON(t, handler, "POST", "/api/diff", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "dup")
}

func TestPostDiff_InvalidBody(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("POST", "/api/diff", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCollectionLifecycle(t *testing.T) {
	handler := newTestHandler()

	// Create without an ID: the server generates one.
	rr := doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{
		Snapshot: snapOf(domain.SectionSnapshot{ID: "todo", Title: "To do"}),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := created["id"]
	require.NotEmpty(t, id)

	// Read it back.
	rr = doJSON(t, handler, "GET", "/api/collections/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Len(t, snap.Sections, 1)
	assert.Equal(t, "todo", snap.Sections[0].ID)

	// Replace wholesale.
	rr = doJSON(t, handler, "PUT", "/api/collections/"+id, snapOf(
		domain.SectionSnapshot{ID: "done", Title: "Done"},
	))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, handler, "GET", "/api/collections/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Len(t, snap.Sections, 1)
	assert.Equal(t, "done", snap.Sections[0].ID)

	// It shows up in the listing.
	rr = doJSON(t, handler, "GET", "/api/collections/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listing map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))
	assert.Contains(t, listing["collections"], id)

	// Delete, then reads miss.
	rr = doJSON(t, handler, "DELETE", "/api/collections/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, handler, "GET", "/api/collections/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateCollection_Conflict(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{ID: "board"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{ID: "board"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPutCollection_InvalidSnapshot(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "PUT", "/api/collections/board", snapOf(
		domain.SectionSnapshot{ID: "dup"},
		domain.SectionSnapshot{ID: "dup"},
	))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestEnsureCollection(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{
		ID:       "board",
		Snapshot: snapOf(domain.SectionSnapshot{ID: "inbox", Items: []domain.RowSnapshot{{ID: "a"}}}),
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	desired := snapOf(
		domain.SectionSnapshot{ID: "inbox", Items: []domain.RowSnapshot{{ID: "a"}, {ID: "b"}}},
		domain.SectionSnapshot{ID: "archive"},
	)

	rr = doJSON(t, handler, "POST", "/api/collections/board/ensure", EnsureRequest{Snapshot: desired})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp ScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Script)

	// A second ensure toward the same snapshot has nothing left to do.
	rr = doJSON(t, handler, "POST", "/api/collections/board/ensure", EnsureRequest{Snapshot: desired})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Script)
}

func TestEnsureCollection_UnknownID(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/collections/ghost/ensure", EnsureRequest{
		Snapshot: snapOf(domain.SectionSnapshot{ID: "s"}),
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEnsureBroadcastsToSubscribers(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{ID: "board"})
	require.Equal(t, http.StatusCreated, rr.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/api/collections/board/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	rr = doJSON(t, handler, "POST", "/api/collections/board/ensure", EnsureRequest{
		Snapshot: snapOf(domain.SectionSnapshot{ID: "inbox"}, domain.SectionSnapshot{ID: "archive"}),
	})
	require.Equal(t, http.StatusOK, rr.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	if !strings.Contains(output, "event: ping") {
		t.Error("Expected initial ping")
	}
	if !strings.Contains(output, "insert_sections") {
		t.Errorf("Expected applied script in SSE output, got: %s", output)
	}
}

func TestSubscribeEvents_StructuralFilter(t *testing.T) {
	handler := newTestHandler()

	rr := doJSON(t, handler, "POST", "/api/collections/", CreateCollectionRequest{
		ID:       "board",
		Snapshot: snapOf(domain.SectionSnapshot{ID: "inbox", Title: "Old"}),
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/api/collections/board/events?structural=1", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	// Title-only change: a pure content script, which the filter drops.
	rr = doJSON(t, handler, "POST", "/api/collections/board/ensure", EnsureRequest{
		Snapshot: snapOf(domain.SectionSnapshot{ID: "inbox", Title: "New"}),
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// Structural change: passes the filter.
	rr = doJSON(t, handler, "POST", "/api/collections/board/ensure", EnsureRequest{
		Snapshot: snapOf(domain.SectionSnapshot{ID: "inbox", Title: "New"}, domain.SectionSnapshot{ID: "archive"}),
	})
	require.Equal(t, http.StatusOK, rr.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.NotContains(t, output, "replace_sections")
	assert.Contains(t, output, "insert_sections")
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()

	ch1, cancel1 := sm.Subscribe("board")
	ch2, cancel2 := sm.Subscribe("board")
	defer cancel2()

	sm.Broadcast("board", "hello")
	assert.Equal(t, "hello", <-ch1)
	assert.Equal(t, "hello", <-ch2)

	// Other collections stay quiet.
	sm.Broadcast("other", "noise")
	select {
	case msg := <-ch1:
		t.Fatalf("unexpected message: %s", msg)
	default:
	}

	// After cancel only the live subscriber receives.
	cancel1()
	sm.Broadcast("board", "again")
	assert.Equal(t, "again", <-ch2)
}

func TestStreamManager_SlowClientDoesNotBlock(t *testing.T) {
	sm := NewStreamManager()

	_, cancel := sm.Subscribe("board")
	defer cancel()

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			sm.Broadcast("board", "msg")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

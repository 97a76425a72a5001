package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	miniclient "github.com/truora/minidyn/aws-v2/client"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	dynamostore "inspect-backend/infrastructure/persistence/dynamodb"
	"inspect-backend/pkg/utils"
)

const (
	itemsTable    = "inspection-items"
	metadataTable = "inspection-metadata"
	venuesTable   = "venue-rooms"
	indexName     = "status-completedAt-index"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	client := miniclient.NewClient()

	require.NoError(t, miniclient.AddTable(ctx, client, itemsTable, "inspection_id", "room_item"))
	require.NoError(t, miniclient.AddTable(ctx, client, metadataTable, "inspectionId", ""))
	require.NoError(t, miniclient.AddTable(ctx, client, venuesTable, "venueId", ""))
	require.NoError(t, miniclient.AddIndex(ctx, client, metadataTable, indexName, "status", "completedAt"))

	logger := zap.NewNop()
	schemas := dynamostore.NewKeySchemaCache(client, logger)
	clock := utils.FixedClock("2026-08-30T10:00:00+08:00")

	items := dynamostore.NewItemStore(client, itemsTable, schemas, logger)
	meta := dynamostore.NewMetadataStore(client, metadataTable, indexName, schemas, logger)
	venues := dynamostore.NewVenueStore(client, venuesTable, schemas, logger)

	service := inspections.NewService(items, meta, venues, clock, logger)
	venueService := inspections.NewVenueService(venues, clock, logger)

	server := httptest.NewServer(NewRouter(service, venueService, false, logger).Setup())
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	return resp, decoded
}

func TestRouterHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSaveEndpointCanonicalPayload(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": "ins-1",
		"roomId":        "R1",
		"roomName":      "Kitchen",
		"venueId":       "V1",
		"venueName":     "Hall A",
		"createdBy":     "alice",
		"items": []map[string]interface{}{
			{"itemId": "i1", "status": "pass"},
			{"itemId": "i2", "status": "fail", "comments": "broken"},
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["written"])

	meta, ok := body["inspectionData"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ins-1", meta["inspection_id"])
	assert.Equal(t, "in-progress", meta["status"])

	totals, ok := meta["totals"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), totals["total"])
}

func TestSaveEndpointAliasPayload(t *testing.T) {
	server := newTestServer(t)

	// snake_case ids, nested venue, item "id"/"notes"/"name" aliases.
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"id":      "ins-alias",
		"room_id": "R1",
		"venue":   map[string]interface{}{"id": "V1", "name": "Hall A"},
		"items": []map[string]interface{}{
			{"id": "i1", "status": "fail", "notes": "cracked", "name": "Window"},
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["written"])

	meta := body["inspectionData"].(map[string]interface{})
	assert.Equal(t, "ins-alias", meta["inspection_id"])
	assert.Equal(t, "V1", meta["venueId"])
	assert.Equal(t, "Hall A", meta["venueName"])

	resp, itemsBody := doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections/ins-alias/items", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items := itemsBody["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "i1", item["itemId"])
	assert.Equal(t, "cracked", item["comments"])
	assert.Equal(t, "Window", item["itemName"])
}

func TestSaveEndpointRejectsCompleted(t *testing.T) {
	server := newTestServer(t)

	// Venue with a single expected item; an all-pass save completes it.
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/venues", map[string]interface{}{
		"venueId": "V1",
		"rooms": []map[string]interface{}{
			{"roomId": "R1", "items": []map[string]interface{}{{"itemId": "i1"}}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": "ins-1",
		"roomId":        "R1",
		"venueId":       "V1",
		"items":         []map[string]interface{}{{"itemId": "i1", "status": "pass"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	complete := body["complete"].(map[string]interface{})
	assert.Equal(t, true, complete["complete"])

	// Any further save is rejected with 403.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": "ins-1",
		"roomId":        "R1",
		"items":         []map[string]interface{}{{"itemId": "i1", "status": "fail"}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Cannot modify completed inspection", body["message"])

	// Reopen unlocks it.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/ins-1/reopen", map[string]interface{}{
		"updatedBy": "carol",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": "ins-1",
		"roomId":        "R1",
		"items":         []map[string]interface{}{{"itemId": "i1", "status": "fail"}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSaveEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"items": []map[string]interface{}{{"itemId": "i1", "status": "pass"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEndpoint(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
			"inspection_id": fmt.Sprintf("ins-%d", i),
			"roomId":        "R1",
			"items":         []map[string]interface{}{{"itemId": "i1", "status": "pending"}},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections?completed_limit=2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, body["completed"])
	assert.Len(t, body["ongoing"], 3)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections?completed_limit=oops", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummaryAndCompleteEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/venues", map[string]interface{}{
		"venueId":   "V1",
		"venueName": "Hall A",
		"rooms": []map[string]interface{}{
			{"roomId": "R1", "items": []map[string]interface{}{{"itemId": "i1"}, {"itemId": "i2"}}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": "ins-1",
		"roomId":        "R1",
		"items":         []map[string]interface{}{{"itemId": "i1", "status": "pass"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, summary := doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections/ins-1/summary", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	totals := summary["totals"].(map[string]interface{})
	assert.Equal(t, float64(1), totals["pass"])

	resp, result := doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections/ins-1/complete?venue_id=V1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, result["complete"])

	missing := result["missing"].([]interface{})
	require.Len(t, missing, 1)
	assert.Equal(t, "i2", missing[0].(map[string]interface{})["itemId"])

	// Completeness check without a venue id is a client error.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections/ins-1/complete", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVenueEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/venues", map[string]interface{}{
		"venueId":   "V1",
		"venueName": "Hall A",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, venue := doJSON(t, http.MethodGet, server.URL+"/api/v1/venues/V1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hall A", venue["venueName"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/venues/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, list := doJSON(t, http.MethodGet, server.URL+"/api/v1/venues", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["count"])

	// Missing venueId fails validation.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/venues", map[string]interface{}{
		"venueName": "No ID",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAndDeleteEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, created := doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections", map[string]interface{}{
		"createdBy": "alice",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	id, ok := created["inspection_id"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^ins-`, id)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/inspections/save", map[string]interface{}{
		"inspection_id": id,
		"roomId":        "R1",
		"items":         []map[string]interface{}{{"itemId": "i1", "status": "pass"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, deleted := doJSON(t, http.MethodDelete, server.URL+"/api/v1/inspections/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), deleted["items_deleted"])

	// Gone from the listing afterwards.
	resp, lists := doJSON(t, http.MethodGet, server.URL+"/api/v1/inspections", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, lists["ongoing"])
	assert.Empty(t, lists["completed"])
}

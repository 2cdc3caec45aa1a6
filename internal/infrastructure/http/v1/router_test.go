package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/auth"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
	"procura/internal/domain/ledger"
	"procura/internal/infrastructure/storage/postgres"
	"procura/internal/testutil/memstore"
	"procura/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubHistory struct {
	entityType string
	entityID   id.ID
}

func (h *stubHistory) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	h.entityType, h.entityID = entityType, entityID
	return []postgres.AuditEntry{{EntityType: entityType, EntityID: entityID, Action: "update"}}, nil
}

type apiFixture struct {
	store   *memstore.Store
	router  *gin.Engine
	history *stubHistory
	token   string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memstore.New()
	adj := ledger.NewAdjuster(store.Items(), store.Journal(), store.Outbox())
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret", "procura"))
	history := &stubHistory{}

	router := NewRouter(RouterConfig{
		Logger:       logger.NewNop(),
		JWTValidator: jwtSvc,
		Items:        item.NewService(store.Items(), store),
		Movements:    adj,
		Receivings:   receiving.NewService(store.Receivings(), adj, store, store.Recorder()),
		SRequests:    srequest.NewService(store.Requests(), adj, store, store.Recorder()),
		History:      history,
	})

	token, _, err := jwtSvc.GenerateAccessToken("u-1", "keeper@example.com", []string{"storekeeper"})
	require.NoError(t, err)
	return &apiFixture{store: store, router: router, history: history, token: token}
}

func (a *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_RequiresToken(t *testing.T) {
	api := newAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AcceptedReceivingAddsStock(t *testing.T) {
	api := newAPI(t)
	api.store.SeedItem("Bolt", 10)

	w := api.do(t, http.MethodPost, "/api/v1/receivings",
		`{"number":"RCV-1","status":"accepted","itemName":" bolt ","qty":5,"idr":"1,500"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "u-1", body["createdBy"])
	assert.Equal(t, int64(15), api.store.Qty("Bolt"))

	// Leaving accepted takes the qty back out.
	w = api.do(t, http.MethodPatch, "/api/v1/receivings/"+body["id"].(string), `{"status":"rejected"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(10), api.store.Qty("Bolt"))
}

func TestRouter_ApprovalWithoutStockIsRejected(t *testing.T) {
	api := newAPI(t)
	api.store.SeedItem("Bolt", 2)

	w := api.do(t, http.MethodPost, "/api/v1/s-requests",
		`{"number":"SR-1","openDate":"2026-03-01","expectedDate":"2026-03-08",
		  "costCenter":"CC-10","location":"Warehouse A","requestBy":"maintenance",
		  "items":[{"name":"Bolt","qty":5}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	srID := decode(t, w)["id"].(string)

	w = api.do(t, http.MethodPut, "/api/v1/s-requests/"+srID, `{"status":"approved"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, decode(t, w)["code"])
	assert.Equal(t, int64(2), api.store.Qty("Bolt"))

	w = api.do(t, http.MethodGet, "/api/v1/s-requests/"+srID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "open", decode(t, w)["status"])
}

func TestRouter_ItemMovements(t *testing.T) {
	api := newAPI(t)
	it := api.store.SeedItem("Washer", 1)

	w := api.do(t, http.MethodPost, "/api/v1/receivings",
		`{"status":"accepted","itemName":"Washer","qty":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/v1/items/"+it.ID.String()+"/movements", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ms []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ms))
	require.Len(t, ms, 1)
	assert.Equal(t, float64(4), ms[0]["delta"])
	assert.Equal(t, float64(5), ms[0]["qtyAfter"])

	w = api.do(t, http.MethodGet, "/api/v1/items/"+id.New().String()+"/movements", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ItemCRUD(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/items", `{"name":"Hex Nut","qty":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := decode(t, w)["id"].(string)

	w = api.do(t, http.MethodGet, "/api/v1/items?search=hex", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalCount"])

	w = api.do(t, http.MethodPatch, "/api/v1/items/"+itemID, `{"qty":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/items/"+itemID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/items/"+itemID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_BadRequests(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/receivings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/receivings", `{"qty":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"])
}

func TestRouter_History(t *testing.T) {
	api := newAPI(t)
	recID := id.New()

	w := api.do(t, http.MethodGet, "/api/v1/receivings/"+recID.String()+"/history", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, receiving.SourceType, api.history.entityType)
	assert.Equal(t, recID, api.history.entityID)
}

func TestRouter_WriteRoles(t *testing.T) {
	store := memstore.New()
	adj := ledger.NewAdjuster(store.Items(), store.Journal(), store.Outbox())
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret", "procura"))
	router := NewRouter(RouterConfig{
		Logger:       logger.NewNop(),
		JWTValidator: jwtSvc,
		Items:        item.NewService(store.Items(), store),
		Movements:    adj,
		Receivings:   receiving.NewService(store.Receivings(), adj, store, nil),
		SRequests:    srequest.NewService(store.Requests(), adj, store, nil),
		History:      &stubHistory{},
		WriteRoles:   []string{"storekeeper"},
	})
	token, _, err := jwtSvc.GenerateAccessToken("viewer", "", []string{"viewer"})
	require.NoError(t, err)

	send := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/items", ""))
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "/api/v1/items", `{"name":"x"}`))
}

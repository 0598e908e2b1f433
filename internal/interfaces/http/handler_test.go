package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/order"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const testSecret = "secreto-de-pruebas"

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	log := logger.Nop()

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:       usecase.NewItemUseCase(runner, store.Items(), store.Movements(), nil),
		MovementUC:   appinventory.NewMovementUseCase(runner, store.Movements(), store.Items()),
		OrderUC:      order.NewOrderUseCase(runner, store.Orders(), store.Items()),
		PDFUC:        order.NewPDFUseCase(store.Orders(), store.Items(), pdf.NewOrderSlipGenerator("Inventario Ledger")),
		JWTSecret:    testSecret,
		DefaultActor: "system",
		Logger:       log,
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readText(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func createItem(t *testing.T, app *fiber.App, name, price string) dto.ItemResponse {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/item/save", map[string]any{"name": name, "price": price}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ItemResponse](t, resp)
}

func topUp(t *testing.T, app *fiber.App, itemID, qty int) {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": itemID, "qty": qty, "type": "T"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Items
// ─────────────────────────────────────────────────────────────────────────────

func TestItemHandler_CrearYConsultar_ConStock(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "2.50")
	assert.Equal(t, "system", item.CreatedBy)
	topUp(t, app, item.ID, 7)

	resp := doRequest(t, app, http.MethodGet, "/api/item/"+strconv.Itoa(item.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, 7, got.RemainingStock)
	assert.Equal(t, "2.5", got.Price.String())
}

func TestItemHandler_BodyInvalido_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodPost, "/api/item/save", map[string]any{"price": "1.00"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "name")
}

func TestItemHandler_NoExiste_Retorna404(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/item/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestItemHandler_Eliminar_RespondeTexto(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Cup", "3.00")

	resp := doRequest(t, app, http.MethodPut, "/api/item/delete/"+strconv.Itoa(item.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ítem marcado como eliminado.", readText(t, resp))

	resp = doRequest(t, app, http.MethodPut, "/api/item/delete/"+strconv.Itoa(item.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_DELETED", decode[dto.ErrorResponse](t, resp).Code)
}

func TestItemHandler_Listar_PaginaCero_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/item?page=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestItemHandler_Listar_TamañoPorDefecto(t *testing.T) {
	app := buildTestApp(t)
	for i := 0; i < 7; i++ {
		createItem(t, app, "Item "+strconv.Itoa(i), "1.00")
	}
	resp := doRequest(t, app, http.MethodGet, "/api/item", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.PageResponse[dto.ItemResponse]](t, resp)
	assert.Len(t, page.Content, 5)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 7, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
}

func TestItemHandler_Listar_PaginaEnorme_RetornaVacio(t *testing.T) {
	app := buildTestApp(t)
	createItem(t, app, "Pen", "1.00")
	resp := doRequest(t, app, http.MethodGet, "/api/item?page=1844674407370955162&size=10", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.PageResponse[dto.ItemResponse]](t, resp)
	assert.Empty(t, page.Content)
	assert.Equal(t, 1, page.TotalElements)
}

// ─────────────────────────────────────────────────────────────────────────────
// Inventory
// ─────────────────────────────────────────────────────────────────────────────

func TestInventoryHandler_SalidaSinStock_Retorna400ConDetalle(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "1.00")
	topUp(t, app, item.ID, 10)

	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": item.ID, "qty": 20, "type": "W"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Available)
	require.NotNil(t, body.Required)
	assert.Equal(t, 20, *body.Required)
}

func TestInventoryHandler_TipoInvalido_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "1.00")
	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": item.ID, "qty": 1, "type": "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Message, "type")
}

func TestInventoryHandler_SinQty_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "1.00")
	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": item.ID, "type": "T"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "qty")

	resp = doRequest(t, app, http.MethodGet, "/api/item/"+strconv.Itoa(item.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[dto.ItemResponse](t, resp).RemainingStock)
}

func TestInventoryHandler_QtyFueraDeRango_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "1.00")
	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": item.ID, "qty": 2147483648, "type": "T"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "qty")
}

func TestInventoryHandler_ItemInexistente_Retorna404(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodPost, "/api/inventory/save", map[string]any{"item_id": 42, "qty": 1, "type": "T"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryHandler_IDNoNumerico_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/inventory/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Orders
// ─────────────────────────────────────────────────────────────────────────────

func TestOrderHandler_FlujoCompleto(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "2.00")
	topUp(t, app, item.ID, 10)

	resp := doRequest(t, app, http.MethodPost, "/api/orders/save", map[string]any{"order_no": "O1", "item_id": item.ID, "qty": 4}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "8", created.Total.String())

	resp = doRequest(t, app, http.MethodGet, "/api/item/"+strconv.Itoa(item.ID), nil, nil)
	assert.Equal(t, 6, decode[dto.ItemResponse](t, resp).RemainingStock)

	resp = doRequest(t, app, http.MethodPost, "/api/orders/save", map[string]any{"order_no": "O1", "item_id": item.ID, "qty": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)

	resp = doRequest(t, app, http.MethodGet, "/api/orders/O1/pdf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "orden_O1.pdf")
	assert.Contains(t, readText(t, resp), "%PDF")

	resp = doRequest(t, app, http.MethodPut, "/api/orders/delete/O1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Orden marcada como eliminada.", readText(t, resp))

	resp = doRequest(t, app, http.MethodPut, "/api/orders/delete/O1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderHandler_SinStock_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	item := createItem(t, app, "Pen", "2.00")
	topUp(t, app, item.ID, 3)

	resp := doRequest(t, app, http.MethodPost, "/api/orders/save", map[string]any{"order_no": "O9", "item_id": item.ID, "qty": 5}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Available)
	assert.Equal(t, 3, *body.Available)
}

// ─────────────────────────────────────────────────────────────────────────────
// Actor
// ─────────────────────────────────────────────────────────────────────────────

func TestActorMiddleware_BearerValido_UsaSubject(t *testing.T) {
	app := buildTestApp(t)
	token, err := jwt.Generate(testSecret, "ana", "inventario-ledger", 5)
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodPost, "/api/item/save", map[string]any{"name": "Pen", "price": "1.00"},
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ana", decode[dto.ItemResponse](t, resp).CreatedBy)
}

func TestActorMiddleware_HeaderXActor(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodPost, "/api/item/save", map[string]any{"name": "Pen", "price": "1.00"},
		map[string]string{apphttp.HeaderActor: "bodega-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "bodega-1", decode[dto.ItemResponse](t, resp).CreatedBy)
}

func TestActorMiddleware_BearerInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/item", nil, map[string]string{"Authorization": "Bearer basura"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestActorMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/item", nil, map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Request id
// ─────────────────────────────────────────────────────────────────────────────

func TestRequestLogger_PropagaRequestID(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/item", nil, map[string]string{apphttp.HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/item", nil, nil)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
	resp.Body.Close()
}

func TestRouter_RutaInexistente_Retorna404(t *testing.T) {
	app := buildTestApp(t)
	resp := doRequest(t, app, http.MethodGet, "/api/desconocido", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

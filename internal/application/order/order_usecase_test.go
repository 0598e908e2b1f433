package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/order"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// failingRunner pasa un repo de movimientos cuyo Create falla.
type failingRunner struct {
	inner order.TxRunner
	err   error
}

func (r *failingRunner) Run(ctx context.Context, fn func(repository.ItemRepository, repository.InventoryMovementRepository, repository.OrderRepository) error) error {
	return r.inner.Run(ctx, func(items repository.ItemRepository, movs repository.InventoryMovementRepository, orders repository.OrderRepository) error {
		return fn(items, failingMovements{InventoryMovementRepository: movs, err: r.err}, orders)
	})
}

type failingMovements struct {
	repository.InventoryMovementRepository
	err error
}

func (f failingMovements) Create(context.Context, *entity.InventoryMovement) error { return f.err }

type fixture struct {
	store *memory.Store
	uc    *order.OrderUseCase
}

func newFixture(t *testing.T, runner order.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	if runner == nil {
		runner = memory.NewTxRunner(store)
	}
	return &fixture{
		store: store,
		uc: order.NewOrderUseCase(runner, store.Orders(), store.Items(),
			order.WithClock(func() time.Time { return fixedNow })),
	}
}

// item crea un ítem con topUp de entradas y withdrawal de salidas.
func (f *fixture) item(t *testing.T, price string, topUp, withdrawal int) int {
	t.Helper()
	ctx := context.Background()
	it := &entity.Item{Name: "Pen", Price: decimal.RequireFromString(price)}
	it.StampCreated("seed", fixedNow)
	require.NoError(t, f.store.Items().Create(ctx, it))
	for typ, qty := range map[entity.MovementType]int{entity.MovementTypeTopUp: topUp, entity.MovementTypeWithdrawal: withdrawal} {
		if qty == 0 {
			continue
		}
		m := &entity.InventoryMovement{ItemID: it.ID, Qty: qty, Type: typ}
		m.StampCreated("seed", fixedNow)
		require.NoError(t, f.store.Movements().Create(ctx, m))
	}
	return it.ID
}

func (f *fixture) available(t *testing.T, itemID int) int {
	t.Helper()
	ctx := context.Background()
	top, err := f.store.Movements().SumQtyByItemAndType(ctx, itemID, entity.MovementTypeTopUp)
	require.NoError(t, err)
	with, err := f.store.Movements().SumQtyByItemAndType(ctx, itemID, entity.MovementTypeWithdrawal)
	require.NoError(t, err)
	return top - with
}

func (f *fixture) movements(t *testing.T) []*entity.InventoryMovement {
	t.Helper()
	list, _, err := f.store.Movements().ListActive(context.Background(), 100, 0)
	require.NoError(t, err)
	return list
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestOrderCreate_DescuentaStockConUnaSalida(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "2.50", 100, 40)
	before := len(f.movements(t))

	res, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "ORD100", ItemID: itemID, Qty: 10})
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.RequireFromString("2.50")), "el precio se toma del ítem")
	assert.True(t, res.Total.Equal(decimal.RequireFromString("25")))
	assert.Equal(t, "ana", res.CreatedBy)

	assert.Equal(t, 50, f.available(t, itemID))
	movs := f.movements(t)
	require.Len(t, movs, before+1)
	last := movs[len(movs)-1]
	assert.Equal(t, entity.MovementTypeWithdrawal, last.Type)
	assert.Equal(t, 10, last.Qty)
	assert.Equal(t, itemID, last.ItemID)
	assert.Equal(t, "ana", last.CreatedBy)
}

func TestOrderCreate_Duplicada_RetornaErrDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 100, 0)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 1})
	require.NoError(t, err)

	_, err = f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 99, f.available(t, itemID))
}

func TestOrderCreate_StockInsuficiente(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 100, 40)

	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 70})
	var detail *domain.InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, 60, detail.Available)
	assert.Equal(t, 70, detail.Required)

	o, _ := f.store.Orders().GetByOrderNo(context.Background(), "A1")
	assert.Nil(t, o)
}

func TestOrderCreate_EntradaInvalida(t *testing.T) {
	f := newFixture(t, nil)
	cases := []dto.CreateOrderRequest{
		{OrderNo: "", ItemID: 1, Qty: 1},
		{OrderNo: "ABCDEFGHIJK", ItemID: 1, Qty: 1},
		{OrderNo: "A1", ItemID: 0, Qty: 1},
		{OrderNo: "A1", ItemID: 1, Qty: 0},
		{OrderNo: "A1", ItemID: 1, Qty: entity.MaxQty + 1},
	}
	for _, in := range cases {
		_, err := f.uc.Create(context.Background(), "ana", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestOrderCreate_ItemInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: 5, Qty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderCreate_FallaLaSalida_RevierteLaOrden(t *testing.T) {
	boom := errors.New("disco lleno")
	store := memory.NewStore()
	f := &fixture{
		store: store,
		uc: order.NewOrderUseCase(&failingRunner{inner: memory.NewTxRunner(store), err: boom},
			store.Orders(), store.Items()),
	}
	itemID := f.item(t, "1", 100, 0)

	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 5})
	require.ErrorIs(t, err, boom)

	o, err := store.Orders().GetByOrderNo(context.Background(), "A1")
	require.NoError(t, err)
	assert.Nil(t, o, "la orden se revierte junto con la salida")
	assert.Equal(t, 100, f.available(t, itemID))
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestOrderUpdate_SoloValidaElIncremento(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 20, 0)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 10})
	require.NoError(t, err)
	// disponible 10: pasar de 10 a 20 pide 10 → acepta; a 21 pide 11 → rechaza
	price := decimal.RequireFromString("3.00")

	_, err = f.uc.Update(context.Background(), "luis", dto.UpdateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 21, Price: price})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	res, err := f.uc.Update(context.Background(), "luis", dto.UpdateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 20, Price: price})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Qty)
	assert.True(t, res.Price.Equal(price), "el precio lo fija quien llama")
	require.NotNil(t, res.UpdatedBy)
	assert.Equal(t, "luis", *res.UpdatedBy)

	// la salida inicial no se ajusta
	assert.Equal(t, 10, f.available(t, itemID))

	// bajar la cantidad nunca falla
	_, err = f.uc.Update(context.Background(), "luis", dto.UpdateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 1, Price: price})
	assert.NoError(t, err)
}

func TestOrderUpdate_PrecioInvalido(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Update(context.Background(), "ana", dto.UpdateOrderRequest{OrderNo: "A1", ItemID: 1, Qty: 1, Price: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrderUpdate_Eliminada_RetornaErrNotFound(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 20, 0)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 1})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(context.Background(), "ana", "A1"))

	_, err = f.uc.Update(context.Background(), "ana", dto.UpdateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 1, Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Update(context.Background(), "ana", dto.UpdateOrderRequest{OrderNo: "NOPE", ItemID: itemID, Qty: 1, Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / Get / List
// ─────────────────────────────────────────────────────────────────────────────

func TestOrderDelete_DosVeces(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 100, 40)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "ORD100", ItemID: itemID, Qty: 10})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), "luis", "ORD100"))
	got, err := f.uc.Get(context.Background(), "ORD100")
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, "luis", *got.DeletedBy)
	require.NotNil(t, got.DeletedAt)

	err = f.uc.Delete(context.Background(), "luis", "ORD100")
	assert.ErrorIs(t, err, domain.ErrAlreadyDeleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// sin compensación en el libro
	assert.Equal(t, 50, f.available(t, itemID))
}

func TestOrderList_SoloActivas(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 100, 0)
	for _, no := range []string{"A1", "A2", "A3"} {
		_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: no, ItemID: itemID, Qty: 1})
		require.NoError(t, err)
	}
	require.NoError(t, f.uc.Delete(context.Background(), "ana", "A2"))

	page, err := f.uc.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "A1", page.Content[0].OrderNo)
	assert.Equal(t, "A3", page.Content[1].OrderNo)
	assert.Equal(t, "Pen", page.Content[0].ItemName)
	assert.Equal(t, 2, page.TotalElements)

	_, err = f.uc.List(context.Background(), -1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// PDF
// ─────────────────────────────────────────────────────────────────────────────

type fakeSlip struct{ got *entity.Order }

func (f *fakeSlip) GenerateOrderSlip(_ context.Context, o *entity.Order, _ *entity.Item) ([]byte, error) {
	f.got = o
	return []byte("%PDF-fake"), nil
}

func TestPDFUseCase_DownloadOrderSlip(t *testing.T) {
	f := newFixture(t, nil)
	itemID := f.item(t, "1", 10, 0)
	_, err := f.uc.Create(context.Background(), "ana", dto.CreateOrderRequest{OrderNo: "A1", ItemID: itemID, Qty: 2})
	require.NoError(t, err)

	gen := &fakeSlip{}
	uc := order.NewPDFUseCase(f.store.Orders(), f.store.Items(), gen)
	pdf, name, err := uc.DownloadOrderSlip(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "orden_A1.pdf", name)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, 2, gen.got.Qty)

	_, _, err = uc.DownloadOrderSlip(context.Background(), "ZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fake del libro
// ─────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	rows   map[int]*entity.InventoryMovement
	sumErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[int]*entity.InventoryMovement{}}
}

func (f *fakeLedger) add(id, itemID, qty int, t entity.MovementType) *entity.InventoryMovement {
	m := &entity.InventoryMovement{ID: id, ItemID: itemID, Qty: qty, Type: t}
	f.rows[id] = m
	return m
}

func (f *fakeLedger) SumQtyByItemAndType(_ context.Context, itemID int, t entity.MovementType) (int, error) {
	if f.sumErr != nil {
		return 0, f.sumErr
	}
	total := 0
	for _, m := range f.rows {
		if m.ItemID == itemID && m.Type == t && m.IsActive() {
			total += m.Qty
		}
	}
	return total, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id int) (*entity.InventoryMovement, error) {
	return f.rows[id], nil
}

// I1: entradas 100, salidas 40 (M1 = salida de 20).
func scenarioLedger() *fakeLedger {
	l := newFakeLedger()
	l.add(1, 1, 60, entity.MovementTypeTopUp)
	l.add(2, 1, 40, entity.MovementTypeTopUp)
	l.add(10, 1, 20, entity.MovementTypeWithdrawal)
	l.add(11, 1, 20, entity.MovementTypeWithdrawal)
	return l
}

func intPtr(v int) *int { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// BalanceCalculator
// ─────────────────────────────────────────────────────────────────────────────

func TestBalance_SumaSoloActivos(t *testing.T) {
	l := scenarioLedger()
	deleted := l.add(12, 1, 500, entity.MovementTypeWithdrawal)
	deleted.Lifecycle = entity.LifecycleDeleted
	l.add(13, 2, 7, entity.MovementTypeTopUp)

	b, err := inventory.NewBalanceCalculator(l).Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, b.TopUp)
	assert.Equal(t, 40, b.Withdrawal)
	assert.Equal(t, 60, b.Available())
}

func TestBalance_SinFilas_RetornaCero(t *testing.T) {
	b, err := inventory.NewBalanceCalculator(newFakeLedger()).Balance(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, inventory.Balance{}, b)
}

func TestBalance_ErrorDeAlmacen_SePropaga(t *testing.T) {
	l := newFakeLedger()
	l.sumErr = errors.New("conexión perdida")
	_, err := inventory.NewBalanceCalculator(l).Balance(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, l.sumErr)
}

// ─────────────────────────────────────────────────────────────────────────────
// StockValidator
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateAvailability_Escenario1(t *testing.T) {
	v := inventory.NewStockValidator(scenarioLedger())

	assert.NoError(t, v.ValidateAvailability(context.Background(), 1, 50))

	err := v.ValidateAvailability(context.Background(), 1, 70)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var detail *domain.InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, 1, detail.ItemID)
	assert.Equal(t, 60, detail.Available)
	assert.Equal(t, 70, detail.Required)
}

func TestValidate_EdicionExcluyeMovimiento_Escenario2(t *testing.T) {
	v := inventory.NewStockValidator(scenarioLedger())
	// M1 (id 10) pasa de 20 a 50: 40-20+50 = 70 <= 100
	assert.NoError(t, v.Validate(context.Background(), 1, 50, entity.MovementTypeWithdrawal, intPtr(10)))
	// 20+81 = 101 > 100
	assert.ErrorIs(t, v.Validate(context.Background(), 1, 81, entity.MovementTypeWithdrawal, intPtr(10)), domain.ErrInsufficientStock)
}

func TestValidate_Salida_RechazaSiSuperaDisponible(t *testing.T) {
	v := inventory.NewStockValidator(scenarioLedger())
	assert.NoError(t, v.Validate(context.Background(), 1, 60, entity.MovementTypeWithdrawal, nil))

	err := v.Validate(context.Background(), 1, 61, entity.MovementTypeWithdrawal, nil)
	var detail *domain.InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, -1, detail.Available)
	assert.Equal(t, 61, detail.Required)
}

func TestValidate_CantidadCero_SiempreAcepta(t *testing.T) {
	v := inventory.NewStockValidator(newFakeLedger())
	assert.NoError(t, v.Validate(context.Background(), 5, 0, entity.MovementTypeTopUp, nil))
	assert.NoError(t, v.Validate(context.Background(), 5, 0, entity.MovementTypeWithdrawal, nil))
}

func TestValidate_ExclusionInexistente_SeIgnora(t *testing.T) {
	v := inventory.NewStockValidator(scenarioLedger())
	assert.NoError(t, v.Validate(context.Background(), 1, 60, entity.MovementTypeWithdrawal, intPtr(999)))
	assert.Error(t, v.Validate(context.Background(), 1, 61, entity.MovementTypeWithdrawal, intPtr(999)))
}

func TestValidate_ExclusionEliminada_NoSeDescuenta(t *testing.T) {
	l := scenarioLedger()
	m := l.add(20, 1, 30, entity.MovementTypeTopUp)
	m.Lifecycle = entity.LifecycleDeleted
	v := inventory.NewStockValidator(l)
	// la entrada eliminada no cuenta ni se descuenta: disponible sigue en 60
	assert.NoError(t, v.Validate(context.Background(), 1, 60, entity.MovementTypeWithdrawal, intPtr(20)))
}

func TestValidate_ExclusionDeOtroItem_NoAjustaSaldo(t *testing.T) {
	l := scenarioLedger()
	// ítem 2 sin stock; el movimiento 10 (salida de 20) es del ítem 1
	v := inventory.NewStockValidator(l)
	err := v.Validate(context.Background(), 2, 20, entity.MovementTypeWithdrawal, intPtr(10))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.ItemID)
	assert.Equal(t, -20, stockErr.Available)
}

func TestValidate_QuitarEntradaQueDejaSaldoNegativo_Rechaza(t *testing.T) {
	v := inventory.NewStockValidator(scenarioLedger())
	// la entrada de 60 (id 1) se edita a 0: 40 - 40 = 0 → acepta; a salida de 1 → 40 < 41
	assert.NoError(t, v.Validate(context.Background(), 1, 0, entity.MovementTypeTopUp, intPtr(1)))
	assert.Error(t, v.Validate(context.Background(), 1, 1, entity.MovementTypeWithdrawal, intPtr(1)))
}

func TestValidate_EdicionIdentica_SiempreAcepta(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		l := newFakeLedger()
		topUp := rng.Intn(100)
		l.add(1, 1, topUp, entity.MovementTypeTopUp)
		// salidas que nunca superan las entradas
		remaining := topUp
		for id := 2; remaining > 0 && id < 6; id++ {
			q := rng.Intn(remaining + 1)
			l.add(id, 1, q, entity.MovementTypeWithdrawal)
			remaining -= q
		}
		v := inventory.NewStockValidator(l)
		for id, m := range l.rows {
			assert.NoError(t, v.Validate(context.Background(), 1, m.Qty, m.Type, intPtr(id)), "iteración %d, movimiento %d", i, id)
		}
	}
}

func TestValidate_SalidaRechazaSiYSoloSiSuperaDisponible(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		l := newFakeLedger()
		top := rng.Intn(200)
		with := rng.Intn(top + 1)
		l.add(1, 1, top, entity.MovementTypeTopUp)
		l.add(2, 1, with, entity.MovementTypeWithdrawal)
		qty := rng.Intn(250)

		err := inventory.NewStockValidator(l).Validate(context.Background(), 1, qty, entity.MovementTypeWithdrawal, nil)
		if qty > top-with {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		} else {
			assert.NoError(t, err)
		}
	}
}

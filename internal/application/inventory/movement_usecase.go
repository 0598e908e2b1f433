package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/lock"
	"github.com/jhoicas/inventario-ledger/pkg/metrics"
)

const entityMovement = "inventory"

// MovementUseCase alta, edición y borrado lógico de movimientos con validación de saldo.
type MovementUseCase struct {
	txRunner TxRunner
	movRepo  repository.InventoryMovementRepository
	itemRepo repository.ItemRepository
	guard    Guard
	metrics  *metrics.StockMetrics
	now      func() time.Time
}

// Option ajusta los casos de uso de movimientos.
type Option func(*MovementUseCase)

// WithGuard activa la serialización por ítem.
func WithGuard(g Guard) Option { return func(uc *MovementUseCase) { uc.guard = g } }

// WithMetrics registra validaciones y mutaciones.
func WithMetrics(m *metrics.StockMetrics) Option { return func(uc *MovementUseCase) { uc.metrics = m } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *MovementUseCase) { uc.now = now } }

// NewMovementUseCase construye el caso de uso. Los repos sueltos se usan solo para lecturas.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.ItemRepository,
	opts ...Option,
) *MovementUseCase {
	uc := &MovementUseCase{
		txRunner: txRunner,
		movRepo:  movRepo,
		itemRepo: itemRepo,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func validateMovementFields(itemID int, qty *int, t string) (int, error) {
	if itemID <= 0 {
		return 0, domain.Invalid("item_id debe ser > 0")
	}
	if qty == nil {
		return 0, domain.Invalid("qty es obligatorio")
	}
	if *qty < 0 || *qty > entity.MaxQty {
		return 0, domain.Invalid("qty debe estar entre 0 y %d", entity.MaxQty)
	}
	if !entity.MovementType(t).IsValid() {
		return 0, domain.Invalid("type debe ser T o W")
	}
	return *qty, nil
}

// Create registra un movimiento activo si el saldo resultante no queda negativo.
func (uc *MovementUseCase) Create(ctx context.Context, actor string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	qty, err := validateMovementFields(in.ItemID, in.Qty, in.Type)
	if err != nil {
		return nil, err
	}
	release, err := uc.guard.Acquire(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		mov  *entity.InventoryMovement
		item *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		item, err = uc.guard.LoadItem(ctx, itemRepo, in.ItemID)
		if err != nil {
			return err
		}
		t := entity.MovementType(in.Type)
		if err := uc.validate(ctx, movRepo, item.ID, qty, t, nil); err != nil {
			return err
		}
		mov = &entity.InventoryMovement{ItemID: item.ID, Qty: qty, Type: t}
		mov.StampCreated(actor, uc.now())
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation(entityMovement, "create")
	return toMovementResponse(mov, item.Name), nil
}

// Update re-valida excluyendo el propio movimiento y reescribe ítem, qty y tipo.
// Si la fila cambia de ítem, el ítem de origen también se valida sin ella.
// Un movimiento eliminado también se puede editar; sigue eliminado.
func (uc *MovementUseCase) Update(ctx context.Context, actor string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	if in.ID <= 0 {
		return nil, domain.Invalid("id debe ser > 0")
	}
	qty, err := validateMovementFields(in.ItemID, in.Qty, in.Type)
	if err != nil {
		return nil, err
	}
	current, err := uc.movRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("movimiento %d: %w", in.ID, domain.ErrNotFound)
	}
	fromItemID := current.ItemID
	release, err := uc.guard.Acquire(ctx, fromItemID, in.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		mov  *entity.InventoryMovement
		item *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		mov, err = movRepo.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("movimiento %d: %w", in.ID, domain.ErrNotFound)
		}
		if mov.ItemID != fromItemID && mov.ItemID != in.ItemID {
			return fmt.Errorf("movimiento %d cambió de ítem durante la edición: %w", in.ID, lock.ErrBusy)
		}
		items, err := uc.guard.LoadItems(ctx, itemRepo, mov.ItemID, in.ItemID)
		if err != nil {
			return err
		}
		item = items[in.ItemID]

		t := entity.MovementType(in.Type)
		if err := uc.validate(ctx, movRepo, item.ID, qty, t, &mov.ID); err != nil {
			return err
		}
		if mov.ItemID != item.ID && mov.IsActive() {
			// el ítem de origen pierde la fila
			if err := uc.validate(ctx, movRepo, mov.ItemID, 0, mov.Type, &mov.ID); err != nil {
				return err
			}
		}
		mov.ItemID = item.ID
		mov.Qty = qty
		mov.Type = t
		mov.StampUpdated(actor, uc.now())
		return movRepo.Update(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation(entityMovement, "update")
	return toMovementResponse(mov, item.Name), nil
}

// Delete borrado lógico. Un segundo borrado devuelve ErrAlreadyDeleted.
func (uc *MovementUseCase) Delete(ctx context.Context, actor string, id int) error {
	if id <= 0 {
		return domain.Invalid("id debe ser > 0")
	}
	err := uc.txRunner.Run(ctx, func(_ repository.ItemRepository, movRepo repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		mov, err := movRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
		}
		if err := mov.MarkDeleted(actor, uc.now()); err != nil {
			return fmt.Errorf("movimiento %d: %w", id, err)
		}
		return movRepo.Update(ctx, mov)
	})
	if err != nil {
		return err
	}
	uc.metrics.IncMutation(entityMovement, "delete")
	return nil
}

// Get devuelve el movimiento aunque esté eliminado.
func (uc *MovementUseCase) Get(ctx context.Context, id int) (*dto.MovementResponse, error) {
	if id <= 0 {
		return nil, domain.Invalid("id debe ser > 0")
	}
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
	}
	name, err := uc.itemName(ctx, mov.ItemID, nil)
	if err != nil {
		return nil, err
	}
	return toMovementResponse(mov, name), nil
}

// List página de movimientos activos.
func (uc *MovementUseCase) List(ctx context.Context, page, size int) (*dto.PageResponse[dto.MovementResponse], error) {
	p, err := repository.NewPage(page, size)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.movRepo.ListActive(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	names := make(map[int]string)
	content := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		name, err := uc.itemName(ctx, m.ItemID, names)
		if err != nil {
			return nil, err
		}
		content = append(content, *toMovementResponse(m, name))
	}
	return &dto.PageResponse[dto.MovementResponse]{
		Content:       content,
		Page:          p.Number,
		TotalPages:    p.TotalPages(total),
		TotalElements: total,
		Size:          p.Size,
	}, nil
}

func (uc *MovementUseCase) validate(
	ctx context.Context,
	ledger inventory.Ledger,
	itemID, qty int,
	t entity.MovementType,
	excludeID *int,
) error {
	err := inventory.NewStockValidator(ledger).Validate(ctx, itemID, qty, t, excludeID)
	uc.metrics.ObserveValidation(metrics.CheckMovement, validationResult(err))
	return err
}

func (uc *MovementUseCase) itemName(ctx context.Context, itemID int, cache map[int]string) (string, error) {
	if name, ok := cache[itemID]; ok {
		return name, nil
	}
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return "", err
	}
	name := ""
	if item != nil {
		name = item.Name
	}
	if cache != nil {
		cache[itemID] = name
	}
	return name, nil
}

// ValidationResult etiqueta de métrica para el resultado de una validación de stock.
func ValidationResult(err error) string { return validationResult(err) }

func validationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultAccepted
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func toMovementResponse(m *entity.InventoryMovement, itemName string) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		ItemName:      itemName,
		Qty:           m.Qty,
		Type:          string(m.Type),
		AuditResponse: dto.NewAuditResponse(m.Record),
	}
}

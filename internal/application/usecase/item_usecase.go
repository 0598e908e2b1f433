package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/metrics"
)

// balanceWorkers tope de consultas de saldo concurrentes al listar.
const balanceWorkers = 8

// ItemUseCase casos de uso CRUD para ítems. El stock se deriva de los movimientos.
type ItemUseCase struct {
	txRunner appinventory.TxRunner
	repo     repository.ItemRepository
	balance  *inventory.BalanceCalculator
	metrics  *metrics.StockMetrics
	now      func() time.Time
}

// NewItemUseCase construye el caso de uso. m puede ser nil.
func NewItemUseCase(
	txRunner appinventory.TxRunner,
	repo repository.ItemRepository,
	movRepo repository.InventoryMovementRepository,
	m *metrics.StockMetrics,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner: txRunner,
		repo:     repo,
		balance:  inventory.NewBalanceCalculator(movRepo),
		metrics:  m,
		now:      time.Now,
	}
}

// SetClock reemplaza time.Now (tests).
func (uc *ItemUseCase) SetClock(now func() time.Time) { uc.now = now }

// normalizeName recorta y normaliza a NFC; valida largo en runas.
func normalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", domain.Invalid("name es obligatorio")
	}
	if n := len([]rune(name)); n > entity.ItemNameMaxLen {
		return "", domain.Invalid("name admite máximo %d caracteres (tiene %d)", entity.ItemNameMaxLen, n)
	}
	return name, nil
}

func validatePrice(item *entity.Item) error {
	if !entity.ValidPrice(item.Price) {
		return domain.Invalid("price debe ser >= %s con máximo %d enteros y %d decimales",
			entity.MinPrice, entity.PriceMaxIntDigits, entity.PriceMaxFracDigits)
	}
	return nil
}

// Create crea un ítem activo. Un ítem nuevo tiene stock 0.
func (uc *ItemUseCase) Create(ctx context.Context, actor string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	item := &entity.Item{Name: name, Price: in.Price}
	if err := validatePrice(item); err != nil {
		return nil, err
	}
	item.StampCreated(actor, uc.now())
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, _ repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		return itemRepo.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation("item", "create")
	return toItemResponse(item, 0), nil
}

// Update cambia nombre y precio. Las órdenes existentes conservan su precio.
func (uc *ItemUseCase) Update(ctx context.Context, actor string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if in.ID <= 0 {
		return nil, domain.Invalid("id debe ser > 0")
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(&entity.Item{Price: in.Price}); err != nil {
		return nil, err
	}

	var item *entity.Item
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, _ repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		item, err = itemRepo.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("ítem %d: %w", in.ID, domain.ErrNotFound)
		}
		item.Name = name
		item.Price = in.Price
		item.StampUpdated(actor, uc.now())
		return itemRepo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation("item", "update")
	b, err := uc.balance.Balance(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item, b.Available()), nil
}

// Delete borrado lógico; sus movimientos y órdenes no cambian.
func (uc *ItemUseCase) Delete(ctx context.Context, actor string, id int) error {
	if id <= 0 {
		return domain.Invalid("id debe ser > 0")
	}
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, _ repository.InventoryMovementRepository, _ repository.OrderRepository) error {
		item, err := itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("ítem %d: %w", id, domain.ErrNotFound)
		}
		if err := item.MarkDeleted(actor, uc.now()); err != nil {
			return fmt.Errorf("ítem %d: %w", id, err)
		}
		return itemRepo.Update(ctx, item)
	})
	if err != nil {
		return err
	}
	uc.metrics.IncMutation("item", "delete")
	return nil
}

// GetByID ítem (aunque esté eliminado) con su stock disponible.
func (uc *ItemUseCase) GetByID(ctx context.Context, id int) (*dto.ItemResponse, error) {
	if id <= 0 {
		return nil, domain.Invalid("id debe ser > 0")
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("ítem %d: %w", id, domain.ErrNotFound)
	}
	b, err := uc.balance.Balance(ctx, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item, b.Available()), nil
}

// List página de ítems activos; los saldos se consultan en paralelo.
func (uc *ItemUseCase) List(ctx context.Context, page, size int) (*dto.PageResponse[dto.ItemResponse], error) {
	p, err := repository.NewPage(page, size)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.ListActive(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	content := make([]dto.ItemResponse, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceWorkers)
	for i, item := range list {
		i, item := i, item
		g.Go(func() error {
			b, err := uc.balance.Balance(gctx, item.ID)
			if err != nil {
				return err
			}
			content[i] = *toItemResponse(item, b.Available())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.PageResponse[dto.ItemResponse]{
		Content:       content,
		Page:          p.Number,
		TotalPages:    p.TotalPages(total),
		TotalElements: total,
		Size:          p.Size,
	}, nil
}

func toItemResponse(item *entity.Item, remaining int) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:             item.ID,
		Name:           item.Name,
		Price:          item.Price,
		RemainingStock: remaining,
		AuditResponse:  dto.NewAuditResponse(item.Record),
	}
}

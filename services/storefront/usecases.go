package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrItemNotFound    = fmt.Errorf("item not found")
)

// Limites da busca da vitrine
const (
	searchCandidateCap = 100
	defaultSearchLimit = 10
)

// StorefrontUseCase contém a lógica de negócio da vitrine
type StorefrontUseCase struct {
	repository CatalogRepository
}

// NewStorefrontUseCase cria uma nova instância de StorefrontUseCase
func NewStorefrontUseCase(repository CatalogRepository) *StorefrontUseCase {
	return &StorefrontUseCase{
		repository: repository,
	}
}

// SearchCatalog busca os candidatos no catálogo e ranqueia contra a query
func (uc *StorefrontUseCase) SearchCatalog(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	candidates, err := uc.repository.ListProducts(ctx, searchCandidateCap)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search candidates: %w", err)
	}

	return searchProducts(query, candidates, limit), nil
}

// ListProducts devolve a página inicial do catálogo
func (uc *StorefrontUseCase) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 || limit > searchCandidateCap {
		limit = searchCandidateCap
	}
	products, err := uc.repository.ListProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct busca um produto pelo ID
func (uc *StorefrontUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, err := uc.repository.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// AddToCart adiciona um produto ao carrinho do usuário
func (uc *StorefrontUseCase) AddToCart(ctx context.Context, userID, productID string, quantity int) (*CartItem, error) {
	if _, err := uc.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	item := NewCartItem(uuid.New().String(), userID, productID, quantity)
	if err := uc.repository.UpsertCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return item, nil
}

// GetCart devolve os itens do carrinho do usuário
func (uc *StorefrontUseCase) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	items, err := uc.repository.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return items, nil
}

// UpdateCartItem atualiza a quantidade de um item do carrinho
func (uc *StorefrontUseCase) UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) error {
	updated, err := uc.repository.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if !updated {
		return ErrItemNotFound
	}
	return nil
}

// RemoveFromCart remove um item do carrinho do usuário
func (uc *StorefrontUseCase) RemoveFromCart(ctx context.Context, userID, itemID string) error {
	removed, err := uc.repository.RemoveCartItem(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !removed {
		return ErrItemNotFound
	}
	return nil
}

// AddToWishlist adiciona um produto à lista de desejos do usuário
func (uc *StorefrontUseCase) AddToWishlist(ctx context.Context, userID, productID string) (*WishlistItem, error) {
	if _, err := uc.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	item := NewWishlistItem(uuid.New().String(), userID, productID)
	if err := uc.repository.AddWishlistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return item, nil
}

// GetWishlist devolve a lista de desejos do usuário
func (uc *StorefrontUseCase) GetWishlist(ctx context.Context, userID string) ([]WishlistItem, error) {
	items, err := uc.repository.GetWishlistItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return items, nil
}

// RemoveFromWishlist remove um produto da lista de desejos do usuário
func (uc *StorefrontUseCase) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	removed, err := uc.repository.RemoveWishlistItem(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if !removed {
		return ErrItemNotFound
	}
	return nil
}

// StockUseCase contém a lógica das ações SAGA de estoque
type StockUseCase struct {
	repository StockRepository
}

// NewStockUseCase cria uma nova instância de StockUseCase
func NewStockUseCase(repository StockRepository) *StockUseCase {
	return &StockUseCase{
		repository: repository,
	}
}

// DecreaseStock diminui o estoque dos itens do pedido usando Lock Pessimista
func (uc *StockUseCase) DecreaseStock(ctx context.Context, req StockActionRequest) error {
	log.Printf("➡️ [DECREASE STOCK] TraceID: %s | OrderID: %s | Items: %d",
		req.TraceID, req.OrderID, len(req.Items))

	// 1. Inicia a transação
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, line := range req.Items {
		// 2. Obtém o produto com LOCK PESSIMISTA (SELECT FOR UPDATE)
		// Isso bloqueia a linha no banco até o Commit ou Rollback
		product, err := uc.repository.GetProductForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			log.Printf("❌ DECREASE FAILED: GetProductForUpdate | OrderID=%s | Error=%v", req.OrderID, err)
			return err
		}

		// 3. Verificar idempotência dentro da transação
		exists, err := uc.repository.MovementExists(ctx, tx, req.OrderID, line.ProductID, MovementTypeDecreased)
		if err != nil {
			return fmt.Errorf("error to check idempotency: %w", err)
		}
		if exists {
			log.Printf("ℹ️  [IDEMPOTENCY] Decrease já processado para OrderID=%s ProductID=%s", req.OrderID, line.ProductID)
			continue
		}

		// 4. Regra de Negócio: Verifica estoque
		if product.Stock < line.Quantity {
			log.Printf("❌ DECREASE FAILED: Insufficient stock | ProductID=%s", line.ProductID)
			return fmt.Errorf("insufficient stock for product %s", line.ProductID)
		}

		// 5. Executa a atualização do estoque e cria o registro de movimento
		movement := NewStockMovement(uuid.New().String(), line.ProductID, req.OrderID, line.Quantity, MovementTypeDecreased)
		if err := uc.repository.ApplyMovement(ctx, tx, movement); err != nil {
			log.Printf("❌ [DECREASE] | OrderID=%s Failed to update: %v", req.OrderID, err)
			return err
		}
	}

	// 6. Commit da transação
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decrease: %w", err)
	}

	log.Printf("✅ [DECREASE] Success: OrderID=%s", req.OrderID)
	return nil
}

// CompensateStock devolve o estoque dos itens do pedido (compensação)
func (uc *StockUseCase) CompensateStock(ctx context.Context, req StockActionRequest) error {
	log.Printf("↩️ [COMPENSATE STOCK] TraceID: %s | OrderID: %s | Items: %d",
		req.TraceID, req.OrderID, len(req.Items))

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, line := range req.Items {
		if _, err := uc.repository.GetProductForUpdate(ctx, tx, line.ProductID); err != nil {
			log.Printf("❌ COMPENSATE FAILED: GetProductForUpdate | OrderID=%s | Error=%v", req.OrderID, err)
			return err
		}

		// Só compensa o que foi de fato debitado, e apenas uma vez
		decreased, err := uc.repository.MovementExists(ctx, tx, req.OrderID, line.ProductID, MovementTypeDecreased)
		if err != nil {
			return fmt.Errorf("error to check idempotency: %w", err)
		}
		restocked, err := uc.repository.MovementExists(ctx, tx, req.OrderID, line.ProductID, MovementTypeRestocked)
		if err != nil {
			return fmt.Errorf("error to check idempotency: %w", err)
		}
		if !decreased || restocked {
			log.Printf("ℹ️  [IDEMPOTENCY] Compensação ignorada para OrderID=%s ProductID=%s", req.OrderID, line.ProductID)
			continue
		}

		movement := NewStockMovement(uuid.New().String(), line.ProductID, req.OrderID, line.Quantity, MovementTypeRestocked)
		if err := uc.repository.ApplyMovement(ctx, tx, movement); err != nil {
			log.Printf("❌ [COMPENSATE] | OrderID=%s Failed to update: %v", req.OrderID, err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit compensation: %w", err)
	}

	log.Printf("♻️  Stock compensated: OrderID=%s", req.OrderID)
	return nil
}

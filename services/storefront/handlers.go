package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AddToCartRequest representa a requisição para adicionar um item ao carrinho
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest representa a requisição para alterar a quantidade de um item
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// AddToWishlistRequest representa a requisição para adicionar à lista de desejos
type AddToWishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// StorefrontHandler contém os handlers HTTP da vitrine
type StorefrontHandler struct {
	useCase      *StorefrontUseCase
	stockUseCase *StockUseCase
	tracer       trace.Tracer
}

// NewStorefrontHandler cria uma nova instância de StorefrontHandler
func NewStorefrontHandler(useCase *StorefrontUseCase, stockUseCase *StockUseCase, tracer trace.Tracer) *StorefrontHandler {
	return &StorefrontHandler{
		useCase:      useCase,
		stockUseCase: stockUseCase,
		tracer:       tracer,
	}
}

// requireUserID extrai a identidade do chamador do header X-User-ID
func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return "", false
	}
	return userID, true
}

// SearchCatalog ranqueia o catálogo contra a query do usuário
func (h *StorefrontHandler) SearchCatalog(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "search_catalog")
	defer span.End()

	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))

	span.SetAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.limit", limit),
	)

	results, err := h.useCase.SearchCatalog(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search catalog"})
		return
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// ListProducts devolve a listagem do catálogo
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.useCase.ListProducts(ctx, limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct devolve um produto pelo ID
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	productID := c.Param("id")
	span.SetAttributes(attribute.String("product_id", productID))

	product, err := h.useCase.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// AddToCart adiciona um produto ao carrinho do usuário
func (h *StorefrontHandler) AddToCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "add_to_cart")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	item, err := h.useCase.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add to cart"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetCart devolve o carrinho do usuário
func (h *StorefrontHandler) GetCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_cart")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.useCase.GetCart(ctx, userID)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// UpdateCartItem altera a quantidade de um item do carrinho
func (h *StorefrontHandler) UpdateCartItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_cart_item")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.useCase.UpdateCartItem(ctx, userID, c.Param("id"), req.Quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// RemoveFromCart remove um item do carrinho
func (h *StorefrontHandler) RemoveFromCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "remove_from_cart")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	err := h.useCase.RemoveFromCart(ctx, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// AddToWishlist adiciona um produto à lista de desejos
func (h *StorefrontHandler) AddToWishlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "add_to_wishlist")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.useCase.AddToWishlist(ctx, userID, req.ProductID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add to wishlist"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetWishlist devolve a lista de desejos do usuário
func (h *StorefrontHandler) GetWishlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_wishlist")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.useCase.GetWishlist(ctx, userID)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// RemoveFromWishlist remove um produto da lista de desejos
func (h *StorefrontHandler) RemoveFromWishlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "remove_from_wishlist")
	defer span.End()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	err := h.useCase.RemoveFromWishlist(ctx, userID, c.Param("productId"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wishlist item not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove wishlist item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// DecreaseStock é o endpoint da ação SAGA para debitar estoque
func (h *StorefrontHandler) DecreaseStock(c *gin.Context) {
	var req StockActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := getOrStartSpanFromPayload(c.Request.Context(), "decrease_stock", req)
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.Int("items", len(req.Items)),
		attribute.String("trace_id", req.TraceID),
	)

	err := h.stockUseCase.DecreaseStock(ctx, req)
	if err != nil {
		log.Printf("ℹ️ [DECREASE] FAILED for OrderID=%s : %s", req.OrderID, err)
		span.RecordError(err)
		// 409 sinaliza falha de negócio ao DTM: aborta a SAGA e dispara as
		// compensações em vez de ficar em retry
		if containsAny(err.Error(), []string{"insufficient stock", "no rows"}) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrease stock"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// CompensateStock é o endpoint da ação SAGA para devolver estoque
func (h *StorefrontHandler) CompensateStock(c *gin.Context) {
	var req StockActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := getOrStartSpanFromPayload(c.Request.Context(), "compensate_stock", req)
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("trace_id", req.TraceID),
	)

	err := h.stockUseCase.CompensateStock(ctx, req)
	if err != nil {
		log.Printf("ℹ️ [COMPENSATE STOCK] FAILED for OrderID=%s : %s", req.OrderID, err)
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compensate stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// HealthCheck verifica a saúde do serviço
func (h *StorefrontHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront-service",
	})
}

// containsAny verifica se a string contém alguma das substrings
func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if len(s) >= len(substr) {
			for i := 0; i <= len(s)-len(substr); i++ {
				if s[i:i+len(substr)] == substr {
					return true
				}
			}
		}
	}
	return false
}

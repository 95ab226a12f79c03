package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateProductRequest representa a requisição para criar um produto
type CreateProductRequest struct {
	SKU         string   `json:"sku" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	Materials   string   `json:"materials"`
	Colors      []string `json:"colors"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
}

// UpdateProductRequest representa a requisição para atualizar um produto.
// Só os campos presentes são aplicados.
type UpdateProductRequest struct {
	SKU         *string   `json:"sku,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Materials   *string   `json:"materials,omitempty"`
	Colors      *[]string `json:"colors,omitempty"`
	Price       *float64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	Stock       *int      `json:"stock,omitempty" binding:"omitempty,gte=0"`
}

// AdminHandler contém os handlers HTTP do back office
type AdminHandler struct {
	useCase *AdminUseCase
	tracer  trace.Tracer
}

// NewAdminHandler cria uma nova instância de AdminHandler
func NewAdminHandler(useCase *AdminUseCase, tracer trace.Tracer) *AdminHandler {
	return &AdminHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// SearchProducts ranqueia o catálogo contra a query do operador
func (h *AdminHandler) SearchProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_search")
	defer span.End()

	query := c.Query("q")
	stockFilter := c.Query("stock")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAdminSearchLimit)))

	span.SetAttributes(
		attribute.String("search.query", query),
		attribute.String("search.stock_filter", stockFilter),
		attribute.Int("search.limit", limit),
	)

	results, err := h.useCase.SearchProducts(ctx, query, stockFilter, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidStockFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search products"})
		return
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// ListProducts devolve o catálogo completo
func (h *AdminHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct devolve um produto pelo ID
func (h *AdminHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_get_product")
	defer span.End()

	product, err := h.useCase.GetProduct(ctx, c.Param("id"))
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

// CreateProduct cria um produto no catálogo
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_create_product")
	defer span.End()

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("product.sku", req.SKU),
		attribute.String("product.category", req.Category),
	)

	product, err := h.useCase.CreateProduct(ctx, req)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct atualiza um produto existente
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_update_product")
	defer span.End()

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.useCase.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct remove um produto do catálogo
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_delete_product")
	defer span.End()

	err := h.useCase.DeleteProduct(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// GetDashboard devolve os contadores do painel
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_dashboard")
	defer span.End()

	stats, err := h.useCase.GetDashboard(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck verifica a saúde do serviço
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "admin-service",
	})
}

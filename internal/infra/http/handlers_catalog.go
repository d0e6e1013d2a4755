package http

import (
	"net/http"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Nom string `json:"nom"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Nom       string    `json:"nom"`
	CreatedAt time.Time `json:"cree_le"`
	UpdatedAt time.Time `json:"modifie_le"`
}

func buildCategoryResponse(category domain.Category) categoryResponse {
	return categoryResponse{
		ID:        category.ID,
		Nom:       category.Nom,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func (s *Server) handleListCategories(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCategories, domain.ActionVoir)
	if !ok {
		return
	}
	categories, err := s.categories.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, buildCategoryResponse(category))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCategories, domain.ActionCreer)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	created, err := s.categories.Create(c.Request.Context(), actor, domain.Category{Nom: req.Nom})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"categorie": buildCategoryResponse(*created)})
}

func (s *Server) handleGetCategory(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCategories, domain.ActionVoir)
	if !ok {
		return
	}
	category, err := s.categories.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categorie": buildCategoryResponse(*category)})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCategories, domain.ActionModifier)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	updated, err := s.categories.Update(c.Request.Context(), actor, domain.Category{
		ID:  c.Param("id"),
		Nom: req.Nom,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categorie": buildCategoryResponse(*updated)})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCategories, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.categories.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type productRequest struct {
	CategoryID     string     `json:"categorie_id"`
	Nom            string     `json:"nom"`
	CodeBarres     string     `json:"code_barres"`
	Description    string     `json:"description"`
	PrixAchat      float64    `json:"prix_achat"`
	PrixVente      float64    `json:"prix_vente"`
	DatePeremption *time.Time `json:"date_peremption"`
}

type productResponse struct {
	ID             string     `json:"id"`
	CategoryID     string     `json:"categorie_id,omitempty"`
	Nom            string     `json:"nom"`
	CodeBarres     string     `json:"code_barres,omitempty"`
	Description    string     `json:"description,omitempty"`
	PrixAchat      float64    `json:"prix_achat"`
	PrixVente      float64    `json:"prix_vente"`
	DatePeremption *time.Time `json:"date_peremption,omitempty"`
	CreatedAt      time.Time  `json:"cree_le"`
	UpdatedAt      time.Time  `json:"modifie_le"`
}

func buildProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:             product.ID,
		CategoryID:     product.CategoryID,
		Nom:            product.Nom,
		CodeBarres:     product.CodeBarres,
		Description:    product.Description,
		PrixAchat:      product.PrixAchat,
		PrixVente:      product.PrixVente,
		DatePeremption: product.DatePeremption,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

func (s *Server) handleListProducts(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleProduits, domain.ActionVoir)
	if !ok {
		return
	}
	products, err := s.products.List(c.Request.Context(), actor, c.Query("recherche"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, buildProductResponse(product))
	}
	c.JSON(http.StatusOK, gin.H{"produits": out})
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleProduits, domain.ActionCreer)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	if req.PrixVente < 0 || req.PrixAchat < 0 {
		writeErrorMessage(c, http.StatusBadRequest, "les prix doivent être positifs")
		return
	}
	created, err := s.products.Create(c.Request.Context(), actor, domain.Product{
		CategoryID:     req.CategoryID,
		Nom:            req.Nom,
		CodeBarres:     req.CodeBarres,
		Description:    req.Description,
		PrixAchat:      req.PrixAchat,
		PrixVente:      req.PrixVente,
		DatePeremption: req.DatePeremption,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"produit": buildProductResponse(*created)})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleProduits, domain.ActionVoir)
	if !ok {
		return
	}
	product, err := s.products.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produit": buildProductResponse(*product)})
}

func (s *Server) handleUpdateProduct(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleProduits, domain.ActionModifier)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	updated, err := s.products.Update(c.Request.Context(), actor, domain.Product{
		ID:             c.Param("id"),
		CategoryID:     req.CategoryID,
		Nom:            req.Nom,
		CodeBarres:     req.CodeBarres,
		Description:    req.Description,
		PrixAchat:      req.PrixAchat,
		PrixVente:      req.PrixVente,
		DatePeremption: req.DatePeremption,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produit": buildProductResponse(*updated)})
}

func (s *Server) handleDeleteProduct(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleProduits, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.products.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

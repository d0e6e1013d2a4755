package http

import (
	"net/http"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type clientRequest struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Adresse   string `json:"adresse"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	Nom       string    `json:"nom"`
	Prenom    string    `json:"prenom,omitempty"`
	Telephone string    `json:"telephone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Adresse   string    `json:"adresse,omitempty"`
	Credit    float64   `json:"credit"`
	CreatedAt time.Time `json:"cree_le"`
	UpdatedAt time.Time `json:"modifie_le"`
}

func buildClientResponse(client domain.Client) clientResponse {
	return clientResponse{
		ID:        client.ID,
		Nom:       client.Nom,
		Prenom:    client.Prenom,
		Telephone: client.Telephone,
		Email:     client.Email,
		Adresse:   client.Adresse,
		Credit:    client.Credit,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func (s *Server) handleListClients(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionVoir)
	if !ok {
		return
	}
	clients, err := s.clients.List(c.Request.Context(), actor, c.Query("recherche"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		out = append(out, buildClientResponse(client))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

func (s *Server) handleCreateClient(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionCreer)
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	created, err := s.clients.Create(c.Request.Context(), actor, domain.Client{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Telephone: req.Telephone,
		Email:     req.Email,
		Adresse:   req.Adresse,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": buildClientResponse(*created)})
}

func (s *Server) handleGetClient(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionVoir)
	if !ok {
		return
	}
	client, err := s.clients.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": buildClientResponse(*client)})
}

// handleGetClientCredit exposes just the running credit balance fed by
// validated credit notes.
func (s *Server) handleGetClientCredit(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionVoir)
	if !ok {
		return
	}
	client, err := s.clients.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit": client.Credit})
}

func (s *Server) handleUpdateClient(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionModifier)
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	updated, err := s.clients.Update(c.Request.Context(), actor, domain.Client{
		ID:        c.Param("id"),
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Telephone: req.Telephone,
		Email:     req.Email,
		Adresse:   req.Adresse,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": buildClientResponse(*updated)})
}

func (s *Server) handleDeleteClient(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleClients, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.clients.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type supplierRequest struct {
	Nom       string `json:"nom"`
	Contact   string `json:"contact"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Adresse   string `json:"adresse"`
}

type supplierResponse struct {
	ID        string    `json:"id"`
	Nom       string    `json:"nom"`
	Contact   string    `json:"contact,omitempty"`
	Telephone string    `json:"telephone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Adresse   string    `json:"adresse,omitempty"`
	CreatedAt time.Time `json:"cree_le"`
	UpdatedAt time.Time `json:"modifie_le"`
}

func buildSupplierResponse(supplier domain.Supplier) supplierResponse {
	return supplierResponse{
		ID:        supplier.ID,
		Nom:       supplier.Nom,
		Contact:   supplier.Contact,
		Telephone: supplier.Telephone,
		Email:     supplier.Email,
		Adresse:   supplier.Adresse,
		CreatedAt: supplier.CreatedAt,
		UpdatedAt: supplier.UpdatedAt,
	}
}

func (s *Server) handleListSuppliers(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleFournisseurs, domain.ActionVoir)
	if !ok {
		return
	}
	suppliers, err := s.suppliers.List(c.Request.Context(), actor, c.Query("recherche"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]supplierResponse, 0, len(suppliers))
	for _, supplier := range suppliers {
		out = append(out, buildSupplierResponse(supplier))
	}
	c.JSON(http.StatusOK, gin.H{"fournisseurs": out})
}

func (s *Server) handleCreateSupplier(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleFournisseurs, domain.ActionCreer)
	if !ok {
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	created, err := s.suppliers.Create(c.Request.Context(), actor, domain.Supplier{
		Nom:       req.Nom,
		Contact:   req.Contact,
		Telephone: req.Telephone,
		Email:     req.Email,
		Adresse:   req.Adresse,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"fournisseur": buildSupplierResponse(*created)})
}

func (s *Server) handleGetSupplier(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleFournisseurs, domain.ActionVoir)
	if !ok {
		return
	}
	supplier, err := s.suppliers.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fournisseur": buildSupplierResponse(*supplier)})
}

func (s *Server) handleUpdateSupplier(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleFournisseurs, domain.ActionModifier)
	if !ok {
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	updated, err := s.suppliers.Update(c.Request.Context(), actor, domain.Supplier{
		ID:        c.Param("id"),
		Nom:       req.Nom,
		Contact:   req.Contact,
		Telephone: req.Telephone,
		Email:     req.Email,
		Adresse:   req.Adresse,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fournisseur": buildSupplierResponse(*updated)})
}

func (s *Server) handleDeleteSupplier(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleFournisseurs, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.suppliers.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

package http

import (
	"net/http"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type stockRequest struct {
	ProductID       string `json:"produit_id"`
	EstablishmentID string `json:"etablissement_id"`
	Quantite        int64  `json:"quantite"`
	SeuilAlerte     int64  `json:"seuil_alerte"`
}

type stockResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"produit_id"`
	EstablishmentID string    `json:"etablissement_id"`
	Quantite        int64     `json:"quantite"`
	SeuilAlerte     int64     `json:"seuil_alerte"`
	CreatedAt       time.Time `json:"cree_le"`
	UpdatedAt       time.Time `json:"modifie_le"`
}

func buildStockResponse(stock domain.Stock) stockResponse {
	return stockResponse{
		ID:              stock.ID,
		ProductID:       stock.ProductID,
		EstablishmentID: stock.EstablishmentID,
		Quantite:        stock.Quantite,
		SeuilAlerte:     stock.SeuilAlerte,
		CreatedAt:       stock.CreatedAt,
		UpdatedAt:       stock.UpdatedAt,
	}
}

func (s *Server) handleListStocks(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionVoir)
	if !ok {
		return
	}
	stocks, err := s.stocks.List(c.Request.Context(), actor, c.Query("etablissement_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]stockResponse, 0, len(stocks))
	for _, stock := range stocks {
		out = append(out, buildStockResponse(stock))
	}
	c.JSON(http.StatusOK, gin.H{"stocks": out})
}

func (s *Server) handleCreateStock(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionCreer)
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.ProductID == "" || req.EstablishmentID == "" {
		writeErrorMessage(c, http.StatusBadRequest, "produit et établissement sont requis")
		return
	}
	if req.Quantite < 0 || req.SeuilAlerte < 0 {
		writeErrorMessage(c, http.StatusBadRequest, "quantité et seuil doivent être positifs")
		return
	}
	created, err := s.stocks.Create(c.Request.Context(), actor, domain.Stock{
		ProductID:       req.ProductID,
		EstablishmentID: req.EstablishmentID,
		Quantite:        req.Quantite,
		SeuilAlerte:     req.SeuilAlerte,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stock": buildStockResponse(*created)})
}

func (s *Server) handleGetStock(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionVoir)
	if !ok {
		return
	}
	stock, err := s.stocks.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": buildStockResponse(*stock)})
}

func (s *Server) handleAdjustStock(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionModifier)
	if !ok {
		return
	}
	var req struct {
		Delta int64 `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Delta == 0 {
		writeErrorMessage(c, http.StatusBadRequest, "le delta ne peut pas être nul")
		return
	}
	adjusted, err := s.stocks.Adjust(c.Request.Context(), actor, c.Param("id"), req.Delta)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": buildStockResponse(*adjusted)})
}

func (s *Server) handleUpdateStockThreshold(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionModifier)
	if !ok {
		return
	}
	var req struct {
		SeuilAlerte int64 `json:"seuil_alerte"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.SeuilAlerte < 0 {
		writeErrorMessage(c, http.StatusBadRequest, "le seuil doit être positif")
		return
	}
	updated, err := s.stocks.UpdateThreshold(c.Request.Context(), actor, c.Param("id"), req.SeuilAlerte)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": buildStockResponse(*updated)})
}

func (s *Server) handleDeleteStock(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleStock, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.stocks.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type establishmentRequest struct {
	Nom       string `json:"nom"`
	Adresse   string `json:"adresse"`
	Telephone string `json:"telephone"`
}

type establishmentResponse struct {
	ID        string    `json:"id"`
	Nom       string    `json:"nom"`
	Adresse   string    `json:"adresse,omitempty"`
	Telephone string    `json:"telephone,omitempty"`
	CreatedAt time.Time `json:"cree_le"`
	UpdatedAt time.Time `json:"modifie_le"`
}

func buildEstablishmentResponse(establishment domain.Establishment) establishmentResponse {
	return establishmentResponse{
		ID:        establishment.ID,
		Nom:       establishment.Nom,
		Adresse:   establishment.Adresse,
		Telephone: establishment.Telephone,
		CreatedAt: establishment.CreatedAt,
		UpdatedAt: establishment.UpdatedAt,
	}
}

func (s *Server) handleListEstablishments(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleEtablissements, domain.ActionVoir)
	if !ok {
		return
	}
	establishments, err := s.establishments.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]establishmentResponse, 0, len(establishments))
	for _, establishment := range establishments {
		out = append(out, buildEstablishmentResponse(establishment))
	}
	c.JSON(http.StatusOK, gin.H{"etablissements": out})
}

func (s *Server) handleCreateEstablishment(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleEtablissements, domain.ActionCreer)
	if !ok {
		return
	}
	var req establishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	created, err := s.establishments.Create(c.Request.Context(), actor, domain.Establishment{
		Nom:       req.Nom,
		Adresse:   req.Adresse,
		Telephone: req.Telephone,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"etablissement": buildEstablishmentResponse(*created)})
}

func (s *Server) handleGetEstablishment(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleEtablissements, domain.ActionVoir)
	if !ok {
		return
	}
	establishment, err := s.establishments.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"etablissement": buildEstablishmentResponse(*establishment)})
}

func (s *Server) handleUpdateEstablishment(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleEtablissements, domain.ActionModifier)
	if !ok {
		return
	}
	var req establishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Nom == "" {
		writeErrorMessage(c, http.StatusBadRequest, "le nom est requis")
		return
	}
	updated, err := s.establishments.Update(c.Request.Context(), actor, domain.Establishment{
		ID:        c.Param("id"),
		Nom:       req.Nom,
		Adresse:   req.Adresse,
		Telephone: req.Telephone,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"etablissement": buildEstablishmentResponse(*updated)})
}

func (s *Server) handleDeleteEstablishment(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleEtablissements, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.establishments.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type transferRequest struct {
	ProductID         string `json:"produit_id"`
	FromEstablishment string `json:"etablissement_source"`
	ToEstablishment   string `json:"etablissement_destination"`
	Quantite          int64  `json:"quantite"`
}

type transferResponse struct {
	ID                string    `json:"id"`
	Reference         string    `json:"reference"`
	ProductID         string    `json:"produit_id"`
	FromEstablishment string    `json:"etablissement_source"`
	ToEstablishment   string    `json:"etablissement_destination"`
	Quantite          int64     `json:"quantite"`
	Statut            string    `json:"statut"`
	CreatedAt         time.Time `json:"cree_le"`
	UpdatedAt         time.Time `json:"modifie_le"`
}

func buildTransferResponse(transfer domain.Transfer) transferResponse {
	return transferResponse{
		ID:                transfer.ID,
		Reference:         transfer.Reference,
		ProductID:         transfer.ProductID,
		FromEstablishment: transfer.FromEstablishment,
		ToEstablishment:   transfer.ToEstablishment,
		Quantite:          transfer.Quantite,
		Statut:            string(transfer.Statut),
		CreatedAt:         transfer.CreatedAt,
		UpdatedAt:         transfer.UpdatedAt,
	}
}

func (s *Server) handleListTransfers(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleTransferts, domain.ActionVoir)
	if !ok {
		return
	}
	transfers, err := s.transfers.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]transferResponse, 0, len(transfers))
	for _, transfer := range transfers {
		out = append(out, buildTransferResponse(transfer))
	}
	c.JSON(http.StatusOK, gin.H{"transferts": out})
}

func (s *Server) handleCreateTransfer(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleTransferts, domain.ActionCreer)
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	created, err := s.transfers.Create(c.Request.Context(), actor, domain.Transfer{
		ProductID:         req.ProductID,
		FromEstablishment: req.FromEstablishment,
		ToEstablishment:   req.ToEstablishment,
		Quantite:          req.Quantite,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfert": buildTransferResponse(*created)})
}

func (s *Server) handleGetTransfer(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleTransferts, domain.ActionVoir)
	if !ok {
		return
	}
	transfer, err := s.transfers.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfert": buildTransferResponse(*transfer)})
}

func (s *Server) handleTransitionTransfer(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleTransferts, domain.ActionModifier)
	if !ok {
		return
	}
	var req struct {
		Statut string `json:"statut"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	transfer, err := s.transfers.Transition(c.Request.Context(), actor, c.Param("id"),
		domain.TransferStatus(req.Statut))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfert": buildTransferResponse(*transfer)})
}

package http

import (
	"net/http"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type orderLineRequest struct {
	ProductID    string  `json:"produit_id"`
	Quantite     int64   `json:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
}

type orderRequest struct {
	SupplierID      string             `json:"fournisseur_id"`
	EstablishmentID string             `json:"etablissement_id"`
	Lines           []orderLineRequest `json:"lignes"`
}

type orderLineResponse struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"produit_id"`
	Quantite     int64   `json:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Reference       string              `json:"reference"`
	SupplierID      string              `json:"fournisseur_id"`
	EstablishmentID string              `json:"etablissement_id"`
	Statut          string              `json:"statut"`
	Lines           []orderLineResponse `json:"lignes"`
	CreatedAt       time.Time           `json:"cree_le"`
	UpdatedAt       time.Time           `json:"modifie_le"`
}

func buildOrderResponse(order domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ID:           line.ID,
			ProductID:    line.ProductID,
			Quantite:     line.Quantite,
			PrixUnitaire: line.PrixUnitaire,
		})
	}
	return orderResponse{
		ID:              order.ID,
		Reference:       order.Reference,
		SupplierID:      order.SupplierID,
		EstablishmentID: order.EstablishmentID,
		Statut:          string(order.Statut),
		Lines:           lines,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (s *Server) handleListOrders(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCommandes, domain.ActionVoir)
	if !ok {
		return
	}
	orders, err := s.orders.List(c.Request.Context(), actor, c.Query("statut"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, buildOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"commandes": out})
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCommandes, domain.ActionCreer)
	if !ok {
		return
	}
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if len(req.Lines) == 0 {
		writeErrorMessage(c, http.StatusBadRequest, "au moins une ligne est requise")
		return
	}
	order := domain.Order{
		SupplierID:      req.SupplierID,
		EstablishmentID: req.EstablishmentID,
	}
	for _, line := range req.Lines {
		if line.Quantite <= 0 {
			writeErrorMessage(c, http.StatusBadRequest, "la quantité doit être strictement positive")
			return
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID:    line.ProductID,
			Quantite:     line.Quantite,
			PrixUnitaire: line.PrixUnitaire,
		})
	}
	created, err := s.orders.Create(c.Request.Context(), actor, order)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"commande": buildOrderResponse(*created)})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCommandes, domain.ActionVoir)
	if !ok {
		return
	}
	order, err := s.orders.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commande": buildOrderResponse(*order)})
}

func (s *Server) handleTransitionOrder(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCommandes, domain.ActionModifier)
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
	order, err := s.orders.Transition(c.Request.Context(), actor, c.Param("id"),
		domain.OrderStatus(req.Statut))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commande": buildOrderResponse(*order)})
}

func (s *Server) handleDeleteOrder(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleCommandes, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.orders.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type saleLineRequest struct {
	ProductID    string  `json:"produit_id"`
	Quantite     int64   `json:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
}

type saleRequest struct {
	ClientID        string            `json:"client_id"`
	EstablishmentID string            `json:"etablissement_id"`
	Lines           []saleLineRequest `json:"lignes"`
}

type saleLineResponse struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"produit_id"`
	Quantite     int64   `json:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
}

type saleResponse struct {
	ID              string             `json:"id"`
	Reference       string             `json:"reference"`
	ClientID        string             `json:"client_id,omitempty"`
	EstablishmentID string             `json:"etablissement_id"`
	Total           float64            `json:"total"`
	Lines           []saleLineResponse `json:"lignes"`
	CreatedAt       time.Time          `json:"cree_le"`
}

func buildSaleResponse(sale domain.Sale) saleResponse {
	lines := make([]saleLineResponse, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		lines = append(lines, saleLineResponse{
			ID:           line.ID,
			ProductID:    line.ProductID,
			Quantite:     line.Quantite,
			PrixUnitaire: line.PrixUnitaire,
		})
	}
	return saleResponse{
		ID:              sale.ID,
		Reference:       sale.Reference,
		ClientID:        sale.ClientID,
		EstablishmentID: sale.EstablishmentID,
		Total:           sale.Total,
		Lines:           lines,
		CreatedAt:       sale.CreatedAt,
	}
}

func (s *Server) handleListSales(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleVentes, domain.ActionVoir)
	if !ok {
		return
	}
	sales, err := s.sales.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, buildSaleResponse(sale))
	}
	c.JSON(http.StatusOK, gin.H{"ventes": out})
}

func (s *Server) handleCreateSale(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleVentes, domain.ActionCreer)
	if !ok {
		return
	}
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if len(req.Lines) == 0 {
		writeErrorMessage(c, http.StatusBadRequest, "au moins une ligne est requise")
		return
	}
	sale := domain.Sale{
		ClientID:        req.ClientID,
		EstablishmentID: req.EstablishmentID,
	}
	for _, line := range req.Lines {
		if line.Quantite <= 0 {
			writeErrorMessage(c, http.StatusBadRequest, "la quantité doit être strictement positive")
			return
		}
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ProductID:    line.ProductID,
			Quantite:     line.Quantite,
			PrixUnitaire: line.PrixUnitaire,
		})
	}
	created, err := s.sales.Create(c.Request.Context(), actor, sale)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vente": buildSaleResponse(*created)})
}

func (s *Server) handleGetSale(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleVentes, domain.ActionVoir)
	if !ok {
		return
	}
	sale, err := s.sales.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vente": buildSaleResponse(*sale)})
}

func (s *Server) handleDeleteSale(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleVentes, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.sales.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type creditNoteRequest struct {
	ClientID string  `json:"client_id"`
	Montant  float64 `json:"montant"`
	Motif    string  `json:"motif"`
}

type creditNoteResponse struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	ClientID  string    `json:"client_id,omitempty"`
	Montant   float64   `json:"montant"`
	Motif     string    `json:"motif,omitempty"`
	Statut    string    `json:"statut"`
	CreatedAt time.Time `json:"cree_le"`
	UpdatedAt time.Time `json:"modifie_le"`
}

func buildCreditNoteResponse(note domain.CreditNote) creditNoteResponse {
	return creditNoteResponse{
		ID:        note.ID,
		Reference: note.Reference,
		ClientID:  note.ClientID,
		Montant:   note.Montant,
		Motif:     note.Motif,
		Statut:    string(note.Statut),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func (s *Server) handleListCreditNotes(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleAvoirs, domain.ActionVoir)
	if !ok {
		return
	}
	notes, err := s.creditNotes.List(c.Request.Context(), actor, c.Query("statut"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]creditNoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, buildCreditNoteResponse(note))
	}
	c.JSON(http.StatusOK, gin.H{"avoirs": out})
}

func (s *Server) handleCreateCreditNote(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleAvoirs, domain.ActionCreer)
	if !ok {
		return
	}
	var req creditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	created, err := s.creditNotes.Create(c.Request.Context(), actor, domain.CreditNote{
		ClientID: req.ClientID,
		Montant:  req.Montant,
		Motif:    req.Motif,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"avoir": buildCreditNoteResponse(*created)})
}

func (s *Server) handleGetCreditNote(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleAvoirs, domain.ActionVoir)
	if !ok {
		return
	}
	note, err := s.creditNotes.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avoir": buildCreditNoteResponse(*note)})
}

func (s *Server) handleTransitionCreditNote(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleAvoirs, domain.ActionModifier)
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
	note, err := s.creditNotes.Transition(c.Request.Context(), actor, c.Param("id"),
		domain.CreditNoteStatus(req.Statut))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avoir": buildCreditNoteResponse(*note)})
}

func (s *Server) handleDeleteCreditNote(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleAvoirs, domain.ActionSupprimer)
	if !ok {
		return
	}
	if err := s.creditNotes.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

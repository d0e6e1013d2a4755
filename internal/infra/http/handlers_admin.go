package http

import (
	"net/http"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type permissionRequest struct {
	Module string `json:"module"`
	Action string `json:"action"`
}

type roleRequest struct {
	Nom         string              `json:"nom"`
	Permissions []permissionRequest `json:"permissions"`
}

type permissionResponse struct {
	Module string `json:"module"`
	Action string `json:"action"`
}

type roleResponse struct {
	ID          string               `json:"id"`
	Nom         string               `json:"nom"`
	Permissions []permissionResponse `json:"permissions"`
	CreatedAt   time.Time            `json:"cree_le"`
	UpdatedAt   time.Time            `json:"modifie_le"`
}

func buildRoleResponse(role domain.Role) roleResponse {
	perms := make([]permissionResponse, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, permissionResponse{
			Module: string(p.Module),
			Action: string(p.Action),
		})
	}
	return roleResponse{
		ID:          role.ID,
		Nom:         role.Nom,
		Permissions: perms,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func roleFromRequest(id string, req roleRequest) domain.Role {
	role := domain.Role{ID: id, Nom: req.Nom}
	for _, p := range req.Permissions {
		role.Permissions = append(role.Permissions, domain.Permission{
			Module: domain.Module(p.Module),
			Action: domain.Action(p.Action),
		})
	}
	return role
}

func (s *Server) handleListRoles(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	roles, err := s.roles.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, buildRoleResponse(role))
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

func (s *Server) handleCreateRole(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	created, err := s.roles.Create(c.Request.Context(), actor, roleFromRequest("", req))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"role": buildRoleResponse(*created)})
}

func (s *Server) handleGetRole(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	role, err := s.roles.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": buildRoleResponse(*role)})
}

func (s *Server) handleUpdateRole(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	updated, err := s.roles.Update(c.Request.Context(), actor, roleFromRequest(c.Param("id"), req))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": buildRoleResponse(*updated)})
}

func (s *Server) handleDeleteRole(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	if err := s.roles.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

type employeeRequest struct {
	Email  string `json:"email"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

type employeeResponse struct {
	SubjectID string    `json:"id"`
	Email     string    `json:"email"`
	Nom       string    `json:"nom"`
	Prenom    string    `json:"prenom,omitempty"`
	RoleID    string    `json:"role_id,omitempty"`
	CreatedAt time.Time `json:"cree_le"`
}

func buildEmployeeResponse(account domain.Account) employeeResponse {
	return employeeResponse{
		SubjectID: account.SubjectID,
		Email:     account.Email,
		Nom:       account.Nom,
		Prenom:    account.Prenom,
		RoleID:    account.RoleID,
		CreatedAt: account.CreatedAt,
	}
}

func (s *Server) handleListEmployees(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	employees, err := s.employees.List(c.Request.Context(), actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, employee := range employees {
		out = append(out, buildEmployeeResponse(employee))
	}
	c.JSON(http.StatusOK, gin.H{"employes": out})
}

func (s *Server) handleCreateEmployee(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	created, err := s.employees.Create(c.Request.Context(), actor, domain.Account{
		Email:  req.Email,
		Nom:    req.Nom,
		Prenom: req.Prenom,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"employe": buildEmployeeResponse(*created)})
}

func (s *Server) handleGetEmployee(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	employee, err := s.employees.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employe": buildEmployeeResponse(*employee)})
}

// handleAssignEmployeeRole sets or, with an empty role_id, clears the
// employee's role.
func (s *Server) handleAssignEmployeeRole(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if err := s.employees.AssignRole(c.Request.Context(), actor, c.Param("id"), req.RoleID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigne": true})
}

func (s *Server) handleDeleteEmployee(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	if err := s.employees.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

// handleEraseAccount wipes the acting owner's whole tenant. Employees are
// denied by the owner gate inside the service.
func (s *Server) handleEraseAccount(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	if err := s.erasure.EraseTenant(c.Request.Context(), actor); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supprime": true})
}

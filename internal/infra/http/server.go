package http

import (
	"net/http"
	"time"

	"officine/internal/config"
	"officine/internal/domain"
	"officine/internal/infra/auth/rbac"
	"officine/internal/infra/auth/session"
	"officine/internal/infra/cache"
	"officine/internal/infra/db"
	"officine/internal/infra/identity"
	"officine/internal/infra/ratelimit"
	"officine/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.Config
	store  *db.Store
	logger *zap.Logger
	r      *gin.Engine

	sessions  domain.SessionVerifier
	issuer    SessionIssuer
	resolver  domain.ActorResolver
	evaluator domain.PermissionEvaluator
	identity  domain.IdentityProvider

	categories     CategoryStore
	products       ProductStore
	stocks         StockStore
	establishments EstablishmentStore
	clients        ClientStore
	suppliers      SupplierStore
	orders         OrderStore
	sales          SaleStore
	creditNotes    CreditNoteStore
	transfers      TransferStore
	audit          AuditStore
	notifications  NotificationStore

	roles     *usecase.RoleService
	employees *usecase.EmployeeService
	erasure   *usecase.EraseService
	sweeper   *usecase.Sweeper

	cronKey string

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

func NewServer(cfg config.Config, store *db.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{cfg: cfg, store: store, logger: logger, r: r}
	s.initDeps()
	s.routes()
	return s
}

// ServerDeps lets tests assemble a server out of fakes without touching
// postgres, redis or the identity provider.
type ServerDeps struct {
	Sessions  domain.SessionVerifier
	Issuer    SessionIssuer
	Resolver  domain.ActorResolver
	Evaluator domain.PermissionEvaluator
	Identity  domain.IdentityProvider

	Categories     CategoryStore
	Products       ProductStore
	Stocks         StockStore
	Establishments EstablishmentStore
	Clients        ClientStore
	Suppliers      SupplierStore
	Orders         OrderStore
	Sales          SaleStore
	CreditNotes    CreditNoteStore
	Transfers      TransferStore
	Audit          AuditStore
	Notifications  NotificationStore

	Roles     *usecase.RoleService
	Employees *usecase.EmployeeService
	Erasure   *usecase.EraseService
	Sweeper   *usecase.Sweeper

	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		cfg:            cfg,
		logger:         logger,
		r:              r,
		sessions:       deps.Sessions,
		issuer:         deps.Issuer,
		resolver:       deps.Resolver,
		evaluator:      deps.Evaluator,
		identity:       deps.Identity,
		categories:     deps.Categories,
		products:       deps.Products,
		stocks:         deps.Stocks,
		establishments: deps.Establishments,
		clients:        deps.Clients,
		suppliers:      deps.Suppliers,
		orders:         deps.Orders,
		sales:          deps.Sales,
		creditNotes:    deps.CreditNotes,
		transfers:      deps.Transfers,
		audit:          deps.Audit,
		notifications:  deps.Notifications,
		roles:          deps.Roles,
		employees:      deps.Employees,
		erasure:        deps.Erasure,
		sweeper:        deps.Sweeper,
		cronKey:        cfg.CronKey,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.cronKey = s.cfg.CronKey

	manager, err := session.NewManager(s.cfg)
	if err != nil {
		s.logger.Fatal("session manager init failed", zap.Error(err))
	}
	s.sessions = manager
	s.issuer = manager

	if idp, err := identity.NewClient(s.cfg); err == nil {
		s.identity = idp
	} else {
		s.logger.Warn("identity provider disabled", zap.Error(err))
	}

	var (
		accountRepo       *db.AccountRepository
		roleRepo          *db.RoleRepository
		categoryRepo      *db.CategoryRepository
		productRepo       *db.ProductRepository
		stockRepo         *db.StockRepository
		establishmentRepo *db.EstablishmentRepository
		clientRepo        *db.ClientRepository
		supplierRepo      *db.SupplierRepository
		orderRepo         *db.OrderRepository
		saleRepo          *db.SaleRepository
		creditNoteRepo    *db.CreditNoteRepository
		transferRepo      *db.TransferRepository
		auditRepo         *db.AuditRepository
		notificationRepo  *db.NotificationRepository
		eraseRepo         *db.EraseRepository
	)
	if s.store != nil && s.store.DB != nil {
		accountRepo = db.NewAccountRepository(s.store.DB)
		roleRepo = db.NewRoleRepository(s.store.DB)
		categoryRepo = db.NewCategoryRepository(s.store.DB)
		productRepo = db.NewProductRepository(s.store.DB)
		stockRepo = db.NewStockRepository(s.store.DB)
		establishmentRepo = db.NewEstablishmentRepository(s.store.DB)
		clientRepo = db.NewClientRepository(s.store.DB)
		supplierRepo = db.NewSupplierRepository(s.store.DB)
		orderRepo = db.NewOrderRepository(s.store.DB)
		saleRepo = db.NewSaleRepository(s.store.DB)
		creditNoteRepo = db.NewCreditNoteRepository(s.store.DB)
		transferRepo = db.NewTransferRepository(s.store.DB)
		auditRepo = db.NewAuditRepository(s.store.DB)
		notificationRepo = db.NewNotificationRepository(s.store.DB)
		eraseRepo = db.NewEraseRepository(s.store.DB)
	}

	s.resolver = usecase.NewResolver(accountRepo, roleRepo)

	var permSource rbac.PermissionSource = roleRepo
	var invalidator usecase.PermissionInvalidator
	if s.cfg.RedisAddr != "" {
		permCache := cache.NewPermissionCache(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB,
			roleRepo, s.cfg.PermCacheTTL(), s.logger)
		permSource = permCache
		invalidator = permCache
	}
	s.evaluator = rbac.NewEvaluator(permSource)

	s.categories = categoryRepo
	s.products = productRepo
	s.stocks = stockRepo
	s.establishments = establishmentRepo
	s.clients = clientRepo
	s.suppliers = supplierRepo
	s.orders = orderRepo
	s.sales = saleRepo
	s.creditNotes = creditNoteRepo
	s.transfers = transferRepo
	s.audit = auditRepo
	s.notifications = notificationRepo

	s.roles = usecase.NewRoleService(roleRepo, invalidator)
	s.employees = usecase.NewEmployeeService(accountRepo, s.identity, s.logger)
	s.erasure = usecase.NewEraseService(eraseRepo, s.identity, s.logger)
	s.sweeper = usecase.NewSweeper(stockRepo, productRepo, notificationRepo,
		s.cfg.ExpiryHorizon(), s.logger)

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/login", s.handleLogin)
		v1.POST("/logout", s.handleLogout)
		v1.GET("/me", s.handleMe)

		v1.GET("/categories", s.handleListCategories)
		v1.POST("/categories", s.handleCreateCategory)
		v1.GET("/categories/:id", s.handleGetCategory)
		v1.PUT("/categories/:id", s.handleUpdateCategory)
		v1.DELETE("/categories/:id", s.handleDeleteCategory)

		v1.GET("/produits", s.handleListProducts)
		v1.POST("/produits", s.handleCreateProduct)
		v1.GET("/produits/:id", s.handleGetProduct)
		v1.PUT("/produits/:id", s.handleUpdateProduct)
		v1.DELETE("/produits/:id", s.handleDeleteProduct)

		v1.GET("/stocks", s.handleListStocks)
		v1.POST("/stocks", s.handleCreateStock)
		v1.GET("/stocks/:id", s.handleGetStock)
		v1.POST("/stocks/:id/ajustement", s.handleAdjustStock)
		v1.PUT("/stocks/:id/seuil", s.handleUpdateStockThreshold)
		v1.DELETE("/stocks/:id", s.handleDeleteStock)

		v1.GET("/etablissements", s.handleListEstablishments)
		v1.POST("/etablissements", s.handleCreateEstablishment)
		v1.GET("/etablissements/:id", s.handleGetEstablishment)
		v1.PUT("/etablissements/:id", s.handleUpdateEstablishment)
		v1.DELETE("/etablissements/:id", s.handleDeleteEstablishment)

		v1.GET("/clients", s.handleListClients)
		v1.POST("/clients", s.handleCreateClient)
		v1.GET("/clients/:id", s.handleGetClient)
		v1.GET("/clients/:id/credit", s.handleGetClientCredit)
		v1.PUT("/clients/:id", s.handleUpdateClient)
		v1.DELETE("/clients/:id", s.handleDeleteClient)

		v1.GET("/fournisseurs", s.handleListSuppliers)
		v1.POST("/fournisseurs", s.handleCreateSupplier)
		v1.GET("/fournisseurs/:id", s.handleGetSupplier)
		v1.PUT("/fournisseurs/:id", s.handleUpdateSupplier)
		v1.DELETE("/fournisseurs/:id", s.handleDeleteSupplier)

		v1.GET("/commandes", s.handleListOrders)
		v1.POST("/commandes", s.handleCreateOrder)
		v1.GET("/commandes/:id", s.handleGetOrder)
		v1.POST("/commandes/:id/statut", s.handleTransitionOrder)
		v1.DELETE("/commandes/:id", s.handleDeleteOrder)

		v1.GET("/ventes", s.handleListSales)
		v1.POST("/ventes", s.handleCreateSale)
		v1.GET("/ventes/:id", s.handleGetSale)
		v1.DELETE("/ventes/:id", s.handleDeleteSale)

		v1.GET("/avoirs", s.handleListCreditNotes)
		v1.POST("/avoirs", s.handleCreateCreditNote)
		v1.GET("/avoirs/:id", s.handleGetCreditNote)
		v1.POST("/avoirs/:id/statut", s.handleTransitionCreditNote)
		v1.DELETE("/avoirs/:id", s.handleDeleteCreditNote)

		v1.GET("/transferts", s.handleListTransfers)
		v1.POST("/transferts", s.handleCreateTransfer)
		v1.GET("/transferts/:id", s.handleGetTransfer)
		v1.POST("/transferts/:id/statut", s.handleTransitionTransfer)

		v1.GET("/roles", s.handleListRoles)
		v1.POST("/roles", s.handleCreateRole)
		v1.GET("/roles/:id", s.handleGetRole)
		v1.PUT("/roles/:id", s.handleUpdateRole)
		v1.DELETE("/roles/:id", s.handleDeleteRole)

		v1.GET("/employes", s.handleListEmployees)
		v1.POST("/employes", s.handleCreateEmployee)
		v1.GET("/employes/:id", s.handleGetEmployee)
		v1.PUT("/employes/:id/role", s.handleAssignEmployeeRole)
		v1.DELETE("/employes/:id", s.handleDeleteEmployee)

		v1.GET("/historique", s.handleListAudit)
		v1.GET("/notifications", s.handleListNotifications)
		v1.POST("/notifications/:id/lu", s.handleMarkNotificationRead)

		v1.DELETE("/compte", s.handleEraseAccount)

		v1.POST("/cron/notifications", s.handleCronSweep)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorMessage(c, http.StatusNotFound, "route introuvable")
	})
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.r
}

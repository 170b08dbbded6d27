package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/repository"
	"github.com/qltt-vn/market-portal/backend/internal/scope"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	scopes      *scope.Resolver
	lister      *scope.Lister

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	vi := vi.New()
	uni := ut.New(vi, vi)
	trans, _ := uni.GetTranslator("vi")
	if err := vi_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	scopes := scope.NewResolver(repo, time.Duration(cfg.Scope.CacheTTL)*time.Second)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		scopes:      scopes,
		lister:      scope.NewLister(repo, scopes),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Đăng nhập / quên mật khẩu
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// Các API dưới đây yêu cầu đăng nhập
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.actor)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.requirePermission("sa.iam.user.read")).Get("/", h.ListUsers)
			r.With(h.requirePermission("sa.iam.user.create")).Post("/", h.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.With(h.requirePermission("sa.iam.user.read")).Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.requirePermission("sa.iam.user.update")).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.requirePermission("sa.iam.user.delete")).Delete("/", h.DeleteUser)
				r.With(h.preventOperateInitialAdmin).With(h.requirePermission("sa.iam.user.reset-pw")).Post("/reset-password", h.ResetUserPassword)
				r.With(h.preventOperateInitialAdmin).With(h.requirePermission("sa.iam.user.update")).Put("/roles", h.AssignUserRoles)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.With(h.requirePermission("sa.iam.role.read")).Get("/", h.GetAllRoles)
			r.With(h.requirePermission("sa.iam.role.create")).Post("/", h.CreateRole)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.roleInfo)
				r.With(h.requirePermission("sa.iam.role.read")).Get("/", h.GetRole)
				r.With(h.requirePermission("sa.iam.role.update")).Patch("/", h.UpdateRole)
				r.With(h.requirePermission("sa.iam.role.delete")).Delete("/", h.DeleteRole)
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.With(h.requirePermission("sa.org.department.read")).Get("/", h.GetAllDepartments)
			r.Get("/scope", h.GetMyDepartmentScope)
			r.With(h.requirePermission("sa.org.department.create")).Post("/", h.CreateDepartment)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.departmentInfo)
				r.With(h.requirePermission("sa.org.department.read")).Get("/", h.GetDepartment)
				r.With(h.requirePermission("sa.org.department.update")).Patch("/", h.UpdateDepartment)
				r.With(h.requirePermission("sa.org.department.delete")).Delete("/", h.DeleteDepartment)
			})
		})

		r.Route("/org-units", func(r chi.Router) {
			r.With(h.requirePermission("sa.org.unit.read")).Get("/", h.GetAllOrgUnits)
			r.With(h.requirePermission("sa.org.unit.create")).Post("/", h.CreateOrgUnit)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.orgUnitInfo)
				r.With(h.requirePermission("sa.org.unit.read")).Get("/", h.GetOrgUnit)
				r.With(h.requirePermission("sa.org.unit.update")).Patch("/", h.UpdateOrgUnit)
				r.With(h.requirePermission("sa.org.unit.delete")).Delete("/", h.DeleteOrgUnit)
			})
		})

		r.Route("/catalogs", func(r chi.Router) {
			r.With(h.requirePermission("sa.cat.catalog.read")).Get("/", h.GetAllCatalogs)
			r.With(h.requirePermission("sa.cat.catalog.create")).Post("/", h.CreateCatalog)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.catalogInfo)
				r.With(h.requirePermission("sa.cat.catalog.read")).Get("/", h.GetCatalog)
				r.With(h.requirePermission("sa.cat.catalog.update")).Patch("/", h.UpdateCatalog)
				r.With(h.requirePermission("sa.cat.catalog.delete")).Delete("/", h.DeleteCatalog)
				r.With(h.requirePermission("sa.cat.catalog.read")).Get("/items", h.GetCatalogItems)
				r.With(h.requirePermission("sa.cat.catalog.update")).Post("/items", h.CreateCatalogItem)
			})
		})

		r.Route("/catalog-items/{id}", func(r chi.Router) {
			r.Use(h.catalogItemInfo)
			r.With(h.requirePermission("sa.cat.catalog.update")).Patch("/", h.UpdateCatalogItem)
			r.With(h.requirePermission("sa.cat.catalog.delete")).Delete("/", h.DeleteCatalogItem)
		})

		r.Route("/areas", func(r chi.Router) {
			r.With(h.requirePermission("sa.geo.area.read")).Get("/", h.GetAllAreas)
			r.With(h.requirePermission("sa.geo.area.create")).Post("/", h.CreateArea)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.areaInfo)
				r.With(h.requirePermission("sa.geo.area.read")).Get("/", h.GetArea)
				r.With(h.requirePermission("sa.geo.area.update")).Patch("/", h.UpdateArea)
				r.With(h.requirePermission("sa.geo.area.delete")).Delete("/", h.DeleteArea)
			})
		})

		r.Route("/stores", func(r chi.Router) {
			r.With(h.requirePermission("sa.store.read")).Get("/", h.ListStores)
			r.With(h.requirePermission("sa.store.create")).Post("/", h.CreateStore)
			r.With(h.requirePermission("sa.store.export")).Get("/export", h.ExportStores)
			r.With(h.requirePermission("sa.store.create")).Get("/import-template", h.GetStoreImportTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.storeInfo)
				r.With(h.requirePermission("sa.store.read")).Get("/", h.GetStore)
				r.With(h.requirePermission("sa.store.update")).Patch("/", h.UpdateStore)
				r.With(h.requirePermission("sa.store.delete")).Delete("/", h.DeleteStore)
			})
		})
	})
}

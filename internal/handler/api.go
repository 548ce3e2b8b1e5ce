package handler

import (
	"time"

	"github.com/ewillweb/internal/logger"
	"github.com/ewillweb/internal/notify"
	"github.com/ewillweb/internal/service"
)

// Deps 是构造 API 所需的服务，启动时一次性选定实现。
type Deps struct {
	Events      *service.EventService
	Contact     *service.ContactService
	Content     *service.ContentService
	Auth        service.Authenticator
	Queue       *notify.Queue
	Logger      *logger.Logger
	Environment string
	MockMode    bool
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	events      *service.EventService
	contact     *service.ContactService
	content     *service.ContentService
	auth        service.Authenticator
	queue       *notify.Queue
	log         *logger.Logger
	environment string
	mockMode    bool
	now         func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	env := deps.Environment
	if env == "" {
		env = "development"
	}
	return &API{
		events:      deps.Events,
		contact:     deps.Contact,
		content:     deps.Content,
		auth:        deps.Auth,
		queue:       deps.Queue,
		log:         log,
		environment: env,
		mockMode:    deps.MockMode,
		now:         time.Now,
	}
}

package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/jurnalspendapol-design/rubikon-mobile/apps/api/echo"
	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/content"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/quiz"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	appfs "github.com/jurnalspendapol-design/rubikon-mobile/fs"
	emailsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/email"
	logsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/logger"
	"github.com/jurnalspendapol-design/rubikon-mobile/services/metrics"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/cache"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/database"
	inmemdb "github.com/jurnalspendapol-design/rubikon-mobile/storage/database/inmem"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/postgrest"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/repos"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Cleanup collects the close funcs of the connections opened while building the graph.
type Cleanup struct {
	fns []func() error
}

func (c *Cleanup) add(fn func() error) {
	c.fns = append(c.fns, fn)
}

// Run closes everything, last opened first, and returns the first error.
func (c *Cleanup) Run() error {
	var first error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDataStore opens the backend selected by `backend.driver`.
func newDataStore(conf *core.Config, cleanup *Cleanup, loggerParam DBLoggerParam) core.DataStore {
	setUp := func() (core.DataStore, error) {
		switch conf.Backend.Driver {
		case core.BackendRest:
			return postgrest.NewClient(conf), nil
		case core.BackendMemory:
			return inmemdb.Open(), nil
		case core.BackendPostgres:
			ctx, cancel := context.WithTimeout(context.Background(), conf.Backend.Timeout)
			defer cancel()

			if err := database.CreateIfNotExist(ctx, conf); err != nil {
				return nil, err
			}
			db, err := database.Open(ctx, conf)
			if err != nil {
				return nil, err
			}
			cleanup.add(db.Close)
			if err = database.Migrate(db, "up"); err != nil {
				return nil, err
			}
			return database.NewStore(db), nil
		}
		return nil, errors.Errorf("unknown backend driver %q", conf.Backend.Driver)
	}

	store, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up data store: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("data store ready : driver %q", conf.Backend.Driver))
	return store
}

// newSessionStore uses Redis when an address is configured, memory otherwise.
func newSessionStore(conf *core.Config, cleanup *Cleanup, logger core.Logger) session.Store {
	if conf.Redis.Addr == "" {
		return cache.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.Backend.Timeout)
	defer cancel()

	store, closeFn, err := cache.NewRedisStore(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	cleanup.add(closeFn)
	return store
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newTranslator(conf *core.Config) ut.Translator {
	return core.NewTranslator(conf.Locale)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	counseling.InitValidators(validate, translator)
	return validate
}

func newModuleService(repo module.Repository, validate *validator.Validate, logger core.Logger) (*module.Service, error) {
	return module.NewService(repo, validate, logger, appfs.FS, appfs.ContentDir)
}

func newPortal() (*content.Portal, error) {
	return content.LoadPortal(appfs.FS, appfs.ContentDir)
}

func newQuiz() (*quiz.Quiz, error) {
	return quiz.Load(appfs.FS, appfs.ContentDir)
}

type serverParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Metrics       *metrics.Metrics
	Sessions      *session.Manager
	UserSvc       *user.Service
	CounselingSvc *counseling.Service
	ReportSvc     *report.Service
	ModuleSvc     *module.Service
	Portal        *content.Portal
	Quiz          *quiz.Quiz
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Metrics:       p.Metrics,
		Sessions:      p.Sessions,
		UserSvc:       p.UserSvc,
		CounselingSvc: p.CounselingSvc,
		ReportSvc:     p.ReportSvc,
		ModuleSvc:     p.ModuleSvc,
		Portal:        p.Portal,
		Quiz:          p.Quiz,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(func() *Cleanup { return new(Cleanup) }))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDataStore))
	must(c.Provide(newSessionStore))
	must(c.Provide(session.NewManager))
	must(c.Provide(func(m *session.Manager) core.Locker { return m }))
	must(c.Provide(newEmailService))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(repos.NewUserRepository))
	must(c.Provide(repos.NewCounselingRepository))
	must(c.Provide(repos.NewReportRepository))
	must(c.Provide(repos.NewModuleRepository))
	must(c.Provide(user.NewService))
	must(c.Provide(counseling.NewService))
	must(c.Provide(report.NewService))
	must(c.Provide(newModuleService))
	must(c.Provide(newPortal))
	must(c.Provide(newQuiz))
	must(c.Provide(metrics.New))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

// Package di wires the API's dependencies with a dig container.
package di

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/tourney/apps/api/echo"
	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/devindex"
	"github.com/trezcool/tourney/core/feedback"
	"github.com/trezcool/tourney/core/tournament"
	"github.com/trezcool/tourney/core/user"
	daosvc "github.com/trezcool/tourney/services/dao"
	emailsvc "github.com/trezcool/tourney/services/email"
	logsvc "github.com/trezcool/tourney/services/logger"
	"github.com/trezcool/tourney/storage/database"
	inmemdb "github.com/trezcool/tourney/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tourney/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided together since they share a storage engine.
type Repositories struct {
	dig.Out
	User       user.Repository
	Tournament tournament.Repository
}

// Storage holds the SQL database, nil when the memory engine is used.
type Storage struct {
	DB *sqlx.DB
}

// Close closes the SQL database, if any.
func (s Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	UserSvc       user.ServiceInterface
	TournamentSvc tournament.ServiceInterface
	IndexSvc      *devindex.Service
	FeedbackSvc   *feedback.Service
	Validate      *validator.Validate
	Translator    ut.Translator
	Metrics       *echoapi.Metrics
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

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Engine == database.Memory {
		return Storage{}
	}

	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{DB: db}
}

func newRepositories(st Storage) Repositories {
	if st.DB == nil {
		db := inmemdb.Open()
		return Repositories{
			User:       inmemdb.NewUserRepository(db),
			Tournament: inmemdb.NewTournamentRepository(db),
		}
	}
	return Repositories{
		User:       sqlxrepos.NewUserRepository(st.DB),
		Tournament: sqlxrepos.NewTournamentRepository(st.DB),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newIndexSource reads the index content from the data-access layer when one is configured and
// builds it from the local tournaments otherwise.
func newIndexSource(conf *core.Config, tnmtSvc tournament.ServiceInterface) (devindex.Source, error) {
	if conf.DAO.URL != "" {
		return daosvc.NewClient(conf), nil
	}
	return devindex.NewCatalog(tnmtSvc)
}

func newMetrics() (*echoapi.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return echoapi.NewMetrics(reg), reg
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		UserSvc:       p.UserSvc,
		TournamentSvc: p.TournamentSvc,
		IndexSvc:      p.IndexSvc,
		FeedbackSvc:   p.FeedbackSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Metrics:       p.Metrics,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(tournament.NewService, dig.As(new(tournament.ServiceInterface))))
	must(c.Provide(feedback.NewService))
	must(c.Provide(newIndexSource))
	must(c.Provide(devindex.NewService))
	must(c.Provide(newMetrics))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

// Package bot wires configuration, storage, the chat transport and the
// handlers into a runnable application.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sharebot/internal/bot/batch"
	"github.com/dmitrijs2005/sharebot/internal/bot/codegen"
	"github.com/dmitrijs2005/sharebot/internal/bot/config"
	"github.com/dmitrijs2005/sharebot/internal/bot/dispatch"
	"github.com/dmitrijs2005/sharebot/internal/bot/handler"
	"github.com/dmitrijs2005/sharebot/internal/bot/health"
	"github.com/dmitrijs2005/sharebot/internal/bot/manifest"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/sharebot/internal/bot/scheduler"
	"github.com/dmitrijs2005/sharebot/internal/bot/services"
	"github.com/dmitrijs2005/sharebot/internal/bot/session"
	"github.com/dmitrijs2005/sharebot/internal/bot/transport"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	transport  transport.Transport
	scheduler  *scheduler.TimerScheduler
	dispatcher *dispatch.Dispatcher
	health     *health.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tg, err := transport.NewTelegram(c.TelegramToken, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var mw manifest.Writer = manifest.Nop{}
	if c.ManifestsEnabled() {
		mw, err = manifest.NewS3Writer(ctx, manifest.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("manifest storage init error: %w", err)
		}
	}

	sched := scheduler.New()
	store := session.NewStore()
	acc := batch.NewAccumulator(store, sched, c.BatchDelay, logger)

	as := services.NewArchiveService(db, rm, tg, c.ChannelID, codegen.UUIDGenerator{}, mw, logger)
	rs := services.NewRetrievalService(db, rm, tg, c.ChannelID, logger)

	h := handler.New(tg, store, acc, as, rs, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		transport:  tg,
		scheduler:  sched,
		dispatcher: dispatch.New(c.Workers, h.Handle, logger),
		health:     health.NewServer(c.HealthAddr, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// pollUpdates feeds inbound updates to the dispatcher until the stream ends,
// then cancels the app.
func (app *App) pollUpdates(ctx context.Context, cancelFunc context.CancelFunc) {
	defer cancelFunc()
	for u := range app.transport.Updates(ctx) {
		if err := app.dispatcher.Submit(u); err != nil {
			app.logger.Warn(ctx, "update dropped", "user_id", u.UserID, "error", err)
		}
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	// handlers keep running while queued updates drain after ctx is cancelled
	app.dispatcher.Start(context.WithoutCancel(ctx))

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.pollUpdates(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.scheduler.Stop()
	app.dispatcher.Stop()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}

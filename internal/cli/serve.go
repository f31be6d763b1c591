package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contract-admin/api/controllers"
	"contract-admin/api/middlewares"
	"contract-admin/api/models/ws"
	"contract-admin/api/routes"
	"contract-admin/api/validate"
	"contract-admin/config"
	"contract-admin/db"
	"contract-admin/internal/chain"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/events"
	"contract-admin/internal/forms"
	"contract-admin/internal/metrics"
	"contract-admin/internal/repo"
	"contract-admin/internal/worker"
	"contract-admin/log"
	"contract-admin/schedule/services"
	"contract-admin/schedule/tasks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewServeCommand runs the HTTP panel.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rootOpts.conf)
		},
	}
}

func serve(ctx context.Context, conf *config.Conf) error {
	c, err := openChain(ctx, conf, true)
	if err != nil {
		return err
	}
	defer c.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	c.Tracker.OnChange(m.ObserveConnection)
	m.ObserveConnection(c.Tracker.State())

	panels, sessions := stores(conf)
	d := dispatch.New(c.Interface, c.Wallet, c.Wallet, c.Tracker, dispatch.Options{
		Selection: conf.Contract.Functions,
		Decimals:  conf.Contract.CurrencyDecimal,
		Panels:    panels,
		Hooks:     []dispatch.Hook{m, dispatch.ResyncOnConfirm(c.Tracker.Resync)},
	})

	gdb, err := db.InitMysql(conf.Mysql)
	if err != nil {
		return err
	}
	records, err := auditRepo(gdb)
	if err != nil {
		return err
	}
	if records != nil {
		d.AddHook(records)
	}
	recorder, err := eventLog(ctx, conf, c, gdb)
	if err != nil {
		return err
	}
	if recorder != nil {
		recorder.OnEvent(m.ObserveEvent)
	}

	var notify services.Notify
	if conf.Email.Host != "" && len(conf.Email.To) > 0 {
		notify = services.EmailNotify(conf.Email)
	}
	monitor, err := services.NewBalanceMonitor(c.Wallet, conf, notify)
	if err != nil {
		return err
	}

	pool := worker.Start(conf.Env.WorkerNum, conf.Env.QueueSize)
	defer pool.Stop()

	stopTasks := tasks.Task(services.NewWalletPoll(c.Wallet, pollInterval(conf)), conf.Wallet.PollInterval, monitor)
	defer stopTasks()

	p := &controllers.Panel{
		Conf:       conf,
		Interface:  c.Interface,
		Model:      forms.Synthesize(c.Interface, conf.Contract.Functions, formOptions(conf)),
		Dispatcher: d,
		Tracker:    c.Tracker,
		Pool:       pool,
		Sessions:   sessions,
		Monitor:    monitor,
		Records:    records,
		Events:     recorder,
		Hub:        ws.NewHub(),
	}
	p.Forward()
	if recorder != nil {
		go runEventLog(ctx, conf, c, recorder)
	}

	validate.BindingValidator()
	gin.SetMode(gin.ReleaseMode)
	app := gin.New()
	app.Use(gin.Recovery(), middlewares.Cors())
	routes.InitRoute(app, p, m)

	srv := &http.Server{Addr: ":" + conf.Env.Port, Handler: app}
	errc := make(chan error, 1)
	go func() {
		log.Logger.Info("admin panel listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// stores picks redis for panels and sessions, or memory when redis is not
// configured or does not answer.
func stores(conf *config.Conf) (dispatch.PanelStore, db.Sessions) {
	if conf.Redis.Address != "" {
		pool, err := db.InitRedis(conf.Redis)
		if err == nil {
			return db.NewRedisPanels(pool, conf.Redis.PanelTTL), db.NewRedisSessions(pool)
		}
		log.Logger.Warn("redis unavailable, keeping panels in memory", zap.Error(err))
	}
	return dispatch.NewMemoryPanels(), db.NewMemorySessions()
}

// auditRepo is nil when mysql is not configured.
func auditRepo(gdb *gorm.DB) (*repo.InvocationRepo, error) {
	if gdb == nil {
		return nil, nil
	}
	r := repo.NewInvocationRepo(gdb)
	if err := r.InitTable(); err != nil {
		return nil, err
	}
	return r, nil
}

// eventLog builds the event recorder over mysql, or over memory when mysql is
// not configured. It is nil when the event log is disabled.
func eventLog(ctx context.Context, conf *config.Conf, c *Chain, gdb *gorm.DB) (*events.Recorder, error) {
	if !conf.Events.Enabled {
		return nil, nil
	}
	var store events.Store = events.NewMemoryStore(conf.Events.Keep)
	if gdb != nil {
		r := repo.NewEventRepo(gdb)
		if err := r.InitTable(); err != nil {
			return nil, err
		}
		store = r
	}
	if conf.Events.WsUrl != "" {
		client, err := chain.Dial(ctx, conf.Events.WsUrl)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", conf.Events.WsUrl, err)
		}
		c.Logs = client
		c.closers = append(c.closers, client.Close)
	}
	return events.NewRecorder(c.Interface.ABI(), store), nil
}

func runEventLog(ctx context.Context, conf *config.Conf, c *Chain, recorder *events.Recorder) {
	opts := events.Options{
		StartBlock:   conf.Events.StartBlock,
		Lookback:     conf.Events.Lookback,
		PollInterval: time.Duration(conf.Events.PollInterval) * time.Second,
	}
	addr := common.HexToAddress(conf.Contract.Address)
	if err := recorder.Run(ctx, c.Logs, addr, opts); err != nil && !errors.Is(err, context.Canceled) {
		log.Logger.Error("event log stopped", zap.Error(err))
	}
}

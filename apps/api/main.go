package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/foyer/apps/api/echo"
	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/dashboard"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
	logsvc "github.com/trezcool/foyer/services/logger"
	"github.com/trezcool/foyer/storage/cache"
	"github.com/trezcool/foyer/storage/database"
	inmemdb "github.com/trezcool/foyer/storage/database/inmem"
	sqlxrepos "github.com/trezcool/foyer/storage/database/sqlx"
)

// repositories bundles the storage implementations picked at start up.
type repositories struct {
	rooms     room.Repository
	residents resident.Repository
	staff     staff.Repository
	schedules schedule.Repository
	dashboard dashboard.Repository
	seq       core.Sequencer
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up zap: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	var repos repositories
	if conf.Database.Enabled {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Error("failed to close", err)
			}
		}()
		repos = repositories{
			rooms:     sqlxrepos.NewRoomRepository(db),
			residents: sqlxrepos.NewResidentRepository(db),
			staff:     sqlxrepos.NewStaffRepository(db),
			schedules: sqlxrepos.NewScheduleRepository(db),
			dashboard: sqlxrepos.NewDashboardRepository(db),
			seq:       sqlxrepos.NewSequencer(db),
		}
	} else {
		dbLogger.Warn("database disabled: data lives in memory and is lost on exit")
		db := inmemdb.Open()
		repos = repositories{
			rooms:     inmemdb.NewRoomRepository(db),
			residents: inmemdb.NewResidentRepository(db),
			staff:     inmemdb.NewStaffRepository(db),
			schedules: inmemdb.NewScheduleRepository(db),
			dashboard: inmemdb.NewDashboardRepository(db),
			seq:       inmemdb.NewSequencer(db),
		}
	}

	// set up stats cache
	statsCache, closeCache, err := setUpStatsCache(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	defer closeCache()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up services
	roomSvc := room.NewService(repos.rooms, validate, conf)
	residentSvc := resident.NewService(repos.residents, roomSvc, repos.seq, validate, logger)
	staffSvc := staff.NewService(repos.staff, validate)
	scheduleSvc := schedule.NewService(repos.schedules, staffSvc, validate)
	dashboardSvc := dashboard.NewService(repos.dashboard, statsCache, conf.Redis.StatsTTL, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		ResidentSvc:  residentSvc,
		RoomSvc:      roomSvc,
		StaffSvc:     staffSvc,
		ScheduleSvc:  scheduleSvc,
		DashboardSvc: dashboardSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// setUpStatsCache returns a nil cache when redis is not configured: quick stats are then
// computed on every call, so they never lag behind room and resident changes.
func setUpStatsCache(ctx context.Context, conf *core.Config) (dashboard.Cache, func(), error) {
	rc := cache.NewRedisClient(conf)
	if rc == nil {
		return nil, func() {}, nil
	}
	if err := cache.Ping(ctx, rc); err != nil {
		_ = rc.Close()
		return nil, func() {}, err
	}
	return cache.NewRedisKV(rc), func() { _ = rc.Close() }, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/auth"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/handlers"
)

var (
	once    sync.Once
	router  http.Handler
	initErr error
)

func setup() {
	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}
	log := logger.New("api")
	gin.SetMode(gin.ReleaseMode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		initErr = err
		return
	}
	if err := auth.EnsureAdminExists(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, log); err != nil {
		initErr = err
		return
	}
	rec, err := metrics.NewPromRecorder(nil)
	if err != nil {
		initErr = err
		return
	}
	router, initErr = handlers.NewRouter(handlers.New(db, cfg, rec, log), nil)
}

// Handler is the entry point for the serverless Go runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		http.Error(w, initErr.Error(), http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}

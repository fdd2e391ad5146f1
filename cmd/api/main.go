package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	agreementadp "microfin-backend/internal/adapter/agreement"
	httpadp "microfin-backend/internal/adapter/http"
	mw "microfin-backend/internal/adapter/middleware"
	"microfin-backend/internal/adapter/notify"
	"microfin-backend/internal/adapter/repository/mysql"
	"microfin-backend/internal/auth"
	"microfin-backend/internal/config"
	"microfin-backend/internal/infrastructure/cache"
	"microfin-backend/internal/infrastructure/db"
	"microfin-backend/internal/infrastructure/logging"
	"microfin-backend/internal/rules"
	loanuc "microfin-backend/internal/usecase/loan"
	workflowuc "microfin-backend/internal/usecase/workflow"
)

func main() {
	cfg := config.Load()
	log := logging.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	clients := mysql.NewClientRepository(gdb)
	staffRepo := mysql.NewStaffRepository(gdb)
	regions := mysql.NewRegionRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	gate := auth.NewGate(cfg.HighValueThreshold)
	validator := rules.NewValidator(clients, loans, regions, rules.Policy{
		MaxDTIPercent:      cfg.MaxDTIPercent,
		AbsoluteMaxLoan:    cfg.AbsoluteMaxLoan,
		HighValueThreshold: cfg.HighValueThreshold,
		GuarantorMaxActive: cfg.GuarantorMaxActive,
	})

	dispatcher := notify.NewLogDispatcher(log)
	agreements := agreementadp.NewStubService(cfg.AgreementBaseURL)
	sideEffectTimeout := time.Duration(cfg.SideEffectTimeoutMS) * time.Millisecond

	loanUC := loanuc.NewUsecase(loans, staffRepo, validator, gate, tx, log)
	workflowUC := workflowuc.NewUsecase(tx, validator, gate, dispatcher, agreements, log, sideEffectTimeout)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(loanUC)
	workflowH := httpadp.NewWorkflowHandler(workflowUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	e.GET("/health", h.Health)

	api := e.Group("/api/v1",
		mw.ActorContext(),
		mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)
	api.POST("/loans", loanH.CreateApplication)
	api.GET("/loans", loanH.ListLoans)
	api.GET("/loans/:application_id", loanH.GetLoan)
	api.POST("/loans/:application_id/agent-review", workflowH.AgentReview)
	api.POST("/loans/:application_id/regional-review", workflowH.RegionalReview)
	api.POST("/loans/:application_id/status", workflowH.OverrideStatus)
	api.POST("/loans/:application_id/payments", workflowH.PostPayment)

	addr := ":" + cfg.AppPort
	log.Infof("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

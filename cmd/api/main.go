package main

import (
	"fmt"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/config"
	appHTTP "github.com/workpulse/attendance-backend-go/internal/handler/http"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/attendance-backend-go/internal/service/attendance"
	authService "github.com/workpulse/attendance-backend-go/internal/service/auth"
	holidayService "github.com/workpulse/attendance-backend-go/internal/service/holiday"
	requestService "github.com/workpulse/attendance-backend-go/internal/service/request"
	userService "github.com/workpulse/attendance-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	businessClock := clock.New(cfg.Business.TimezoneOffsetHours)
	deriver := attendanceService.NewDeriver(
		businessClock,
		cfg.Business.ShiftStart,
		cfg.Business.ShiftEnd,
		cfg.Business.OvertimeStart,
		cfg.Business.MinOvertimeMinutes,
	)

	authSvc := authService.NewService(userRepo, jwtService)
	userSvc := userService.NewService(
		userRepo,
		teamRepo,
		jwtService,
		businessClock,
		cfg.App.BcryptCost,
		cfg.Business.RetentionDays,
	)
	attendanceSvc := attendanceService.NewService(
		attendanceRepo,
		requestRepo,
		holidayRepo,
		auditRepo,
		jwtService,
		businessClock,
		deriver,
		cfg.Business.GraceHours,
	)
	requestSvc := requestService.NewService(
		db,
		requestRepo,
		attendanceRepo,
		holidayRepo,
		jwtService,
		businessClock,
		cfg.Business.GraceHours,
		cfg.Business.SubmitWindowDays,
		cfg.Business.OvertimeStart,
		cfg.Business.MinOvertimeMinutes,
	)
	holidaySvc := holidayService.NewService(holidayRepo, jwtService)

	router := appHTTP.NewRouter(
		jwtService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewUserHandler(userSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewRequestHandler(requestSvc),
		appHTTP.NewHolidayHandler(holidaySvc),
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

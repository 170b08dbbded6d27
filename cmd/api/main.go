package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/handler"
	"github.com/qltt-vn/market-portal/backend/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * Tạo logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * Nạp cấu hình
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("không nạp được cấu hình", "error", err)
		return
	}

	/**********************************************
	 * Kết nối database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("không tạo được pool kết nối database", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open chỉ tạo pool chứ chưa kết nối thật, nên phải ping tường minh
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("không kết nối được database", "error", err)
		return
	}

	/**********************************************
	 * Tạo repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * Đảm bảo có vai trò quản trị gốc và tài khoản quản trị gốc
	 **********************************************/
	if err := ensureInitialAdmin(ctx, cfg, repo); err != nil {
		logger.Error("không khởi tạo được tài khoản quản trị gốc", "error", err)
		return
	}

	/**********************************************
	 * Kết nối rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("không kết nối được rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("không mở được channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("không khai báo được queue", "error", err)
		return
	}

	/**********************************************
	 * Kết nối redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * Tạo handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb)
	if err != nil {
		logger.Error("không tạo được handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * Khởi động HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("đang khởi động server...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("không khởi động được server", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("đang tắt server...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("tắt server thất bại", slog.String("error", err.Error()))
	}
	logger.Info("server đã tắt")
}

// ensureInitialAdmin tạo vai trò SUPER_ADMIN và tài khoản quản trị gốc nếu
// chưa có, gán vai trò cho tài khoản. Chạy lại nhiều lần không gây lỗi.
func ensureInitialAdmin(ctx context.Context, cfg *config.Config, repo *repository.Repository) error {
	role, err := repo.GetRoleByCode(ctx, "SUPER_ADMIN")
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		role = &domain.Role{
			Code:         "SUPER_ADMIN",
			Name:         "Quản trị hệ thống",
			Description:  "Vai trò quản trị gốc, có mọi quyền",
			IsAdmin:      true,
			IsSuperAdmin: true,
			Permissions:  []string{"ADMIN:ACCESS"},
		}
		if err := repo.CreateRole(ctx, role); err != nil {
			return err
		}
	}

	admin, err := repo.GetUserByUsername(ctx, cfg.InitialAdmin.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin = &domain.User{
			Username:     cfg.InitialAdmin.Username,
			PasswordHash: string(passwordHash),
			FullName:     cfg.InitialAdmin.FullName,
			Email:        cfg.InitialAdmin.Email,
			Status:       domain.UserStatusActive,
		}
		if err := repo.CreateUser(ctx, admin); err != nil {
			var pgErr *pgconn.PgError
			// Hai tiến trình cùng khởi động có thể đua nhau tạo, thua cũng không sao
			if !errors.As(err, &pgErr) || pgErr.ConstraintName != "users_username_key" {
				return err
			}
			return nil
		}
	}

	return repo.AssignRolesToUser(ctx, admin.ID, []repository.RoleAssignment{
		{RoleID: role.ID, IsPrimary: true},
	})
}

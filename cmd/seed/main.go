package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/repository"
	"github.com/qltt-vn/market-portal/backend/internal/seed"
	"github.com/qltt-vn/market-portal/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "thao tác cần chạy (1: người dùng ngẫu nhiên, 2: cây tổ chức, 3: địa bàn, 4: danh mục, 5: vai trò, 6: cơ sở kinh doanh)")
	flag.IntVar(&n, "n", 5, "số bản ghi cần tạo")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Nạp cấu hình
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("không nạp được cấu hình", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Tạo pool kết nối database
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

	repo := repository.NewRepository(cfg, dbpool)

	ctx = context.Background()

	switch op {
	case 0:
		slog.Error("chưa chỉ định thao tác")
	case 1:
		if n <= 0 {
			slog.Error("số lượng người dùng không hợp lệ")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("không sinh được người dùng ngẫu nhiên", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(ctx, user); err != nil {
				slog.Error("không tạo được người dùng", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}
		slog.Info("đã tạo người dùng mẫu", slog.Int("count", n-cnt))
	case 2:
		seed.SeedDepartments(ctx, repo)
	case 3:
		seed.SeedAreas(ctx, repo)
	case 4:
		seed.SeedCatalogs(ctx, repo)
	case 5:
		seed.SeedRoles(ctx, repo)
	case 6:
		if n <= 0 {
			slog.Error("số lượng cơ sở không hợp lệ")
			return
		}
		seed.SeedStores(ctx, repo, n)
	default:
		slog.Error("thao tác không hợp lệ")
	}
}

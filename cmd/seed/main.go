// Package main provides a CLI tool for seeding the database with initial data.
// It always ensures the admin account exists; demo master data and a few
// posted movements are added when SEED_DEMO_DATA=true.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/catalogs/counterparty"
	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/catalogs/warehouse"
	"stockbook/internal/domain/movements"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/infrastructure/numerator"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/auth_repo"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/movement_repo"
	"stockbook/internal/infrastructure/storage/postgres/register_repo"
	"stockbook/pkg/config"
	"stockbook/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	admin, err := seedAdminUser(ctx, txManager, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log, admin); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) (*auth.User, error) {
	username := getEnv("ADMIN_USERNAME", "admin")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	users := auth_repo.NewUserRepo(txManager)

	existing, err := users.GetByUsername(ctx, username)
	if err == nil {
		if !existing.IsAdmin() {
			log.Warnw("user exists but does not hold the admin role", "username", username, "role", existing.Role)
		}
		log.Infow("admin user already exists", "username", username, "user_id", existing.ID)
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(username, string(passwordHash), appctx.RoleAdmin)
	admin.DisplayName = "System Administrator"

	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", username, "user_id", admin.ID)
	return admin, nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger, admin *auth.User) error {
	log.Info("seeding demo data...")

	if err := seedOperatorUser(ctx, txManager, log); err != nil {
		return err
	}
	if err := seedWarehouses(ctx, txManager, log); err != nil {
		return err
	}
	if err := seedCounterparties(ctx, txManager, log); err != nil {
		return err
	}
	if err := seedProducts(ctx, txManager, log); err != nil {
		return err
	}
	if err := seedMovements(ctx, txManager, log, admin); err != nil {
		return err
	}

	log.Info("demo data seeded successfully")
	return nil
}

func seedOperatorUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	users := auth_repo.NewUserRepo(txManager)

	if _, err := users.GetByUsername(ctx, "operator"); err == nil {
		return nil
	} else if !apperror.IsNotFound(err) {
		return fmt.Errorf("check operator exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(getEnv("OPERATOR_PASSWORD", "Operator123!")), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	operator := auth.NewUser("operator", string(passwordHash), appctx.RoleOperator)
	operator.DisplayName = "Warehouse Operator"

	if err := users.Create(ctx, operator); err != nil {
		return fmt.Errorf("insert operator user: %w", err)
	}

	log.Infow("operator user created", "username", operator.Username, "user_id", operator.ID)
	return nil
}

func seedWarehouses(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	repo := catalog_repo.NewWarehouseRepo(txManager)

	seeds := []struct {
		code     string
		name     string
		address  string
		manager  string
		capacity int64
	}{
		{"WH-001", "Main warehouse", "1 Industrial Park Rd", "J. Mercer", 50000},
		{"WH-002", "Retail store", "14 High Street", "A. Kowalski", 2000},
		{"WH-003", "Transit hub", "Dock 7, Freight Terminal", "", 0},
	}

	for _, s := range seeds {
		exists, err := repo.ExistsByCode(ctx, s.code)
		if err != nil {
			return fmt.Errorf("check warehouse %s: %w", s.code, err)
		}
		if exists {
			continue
		}

		wh := warehouse.NewWarehouse(s.code, s.name)
		wh.Address = strPtr(s.address)
		wh.Manager = strPtr(s.manager)
		if s.capacity > 0 {
			wh.Capacity = &s.capacity
		}

		if err := repo.Create(ctx, wh); err != nil {
			return fmt.Errorf("insert warehouse %s: %w", s.code, err)
		}
		log.Infow("warehouse created", "code", s.code, "name", s.name)
	}

	return nil
}

func seedCounterparties(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	repo := catalog_repo.NewCounterpartyRepo(txManager)

	seeds := []struct {
		code    string
		name    string
		cpType  counterparty.CounterpartyType
		contact string
		email   string
	}{
		{"CP-001", "Office Supplies Ltd", counterparty.TypeSupplier, "Sales Desk", "sales@officesupplies.example"},
		{"CP-002", "Acme Retail", counterparty.TypeClient, "Purchasing", "orders@acmeretail.example"},
		{"CP-003", "JD Trading", counterparty.TypeBoth, "J. Doe", "jd@jdtrading.example"},
	}

	for _, s := range seeds {
		exists, err := repo.ExistsByCode(ctx, s.code)
		if err != nil {
			return fmt.Errorf("check counterparty %s: %w", s.code, err)
		}
		if exists {
			continue
		}

		cp := counterparty.NewCounterparty(s.code, s.name, s.cpType)
		cp.ContactPerson = strPtr(s.contact)
		cp.Email = strPtr(s.email)

		if err := repo.Create(ctx, cp); err != nil {
			return fmt.Errorf("insert counterparty %s: %w", s.code, err)
		}
		log.Infow("counterparty created", "code", s.code, "name", s.name)
	}

	return nil
}

// demoProducts is shared by the bulk insert and the demo movement posting.
var demoProducts = []struct {
	code     string
	name     string
	category string
	unit     string
	price    string
	minStock int64
	maxStock int64
}{
	{"PR-001", "Copy paper A4 80g", "paper", "pack", "12.50", 20, 500},
	{"PR-002", "Ballpoint pen blue", "writing", "pcs", "1.20", 50, 0},
	{"PR-003", "Desk stapler", "desk", "pcs", "8.90", 0, 0},
	{"PR-004", "Paper clips 28mm", "desk", "box", "2.10", 30, 0},
	{"PR-005", "Lever arch file", "filing", "pcs", "4.75", 0, 0},
	{"PR-006", "Whiteboard marker set", "writing", "set", "6.40", 10, 0},
	{"PR-007", "Sticky notes 76x76", "paper", "pack", "3.30", 0, 0},
	{"PR-008", "Envelope C4", "paper", "box", "15.00", 0, 200},
}

// seedProducts bulk-inserts the demo products over the COPY protocol.
// COPY cannot skip conflicting rows, so the whole batch is skipped when any
// products already exist.
func seedProducts(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	var count int64
	err := txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		log.Infow("products already present, skipping bulk insert", "count", count)
		return nil
	}

	columns := []string{
		"id", "code", "name", "active", "deletion_mark", "version",
		"created_at", "updated_at", "category", "unit", "specification",
		"price", "min_stock", "max_stock",
	}

	rows := make([][]any, 0, len(demoProducts))
	for _, s := range demoProducts {
		p := product.NewProduct(s.code, s.name)
		p.Category = strPtr(s.category)
		p.Unit = s.unit
		p.MinStock = s.minStock
		p.MaxStock = s.maxStock

		// COPY runs in binary format; numeric encodes from float64, not
		// from decimal's Valuer string.
		price := types.MustMoney(s.price)
		rows = append(rows, []any{
			p.ID, p.Code, p.Name, p.Active, p.DeletionMark, p.Version,
			p.CreatedAt, p.UpdatedAt, p.Category, p.Unit, p.Specification,
			price.InexactFloat64(), p.MinStock, p.MaxStock,
		})
	}

	inserter := postgres.NewBatchInserter(txManager)
	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inserted, err := inserter.CopyFromSlice(ctx, "products", columns, rows)
		if err != nil {
			return fmt.Errorf("bulk insert products: %w", err)
		}
		log.Infow("products created", "count", inserted)
		return nil
	})
}

// seedMovements posts opening stock through the engine itself, never with
// raw inserts, so numbering, balances and validation all apply.
func seedMovements(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger, admin *auth.User) error {
	var haveMovements bool
	err := txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements)`).Scan(&haveMovements)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if haveMovements {
		log.Info("ledger not empty, skipping demo movements")
		return nil
	}

	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	counterpartyRepo := catalog_repo.NewCounterpartyRepo(txManager)

	stockService := stock.NewService(register_repo.NewStockRepo(txManager))
	engine := movements.NewEngine(movements.EngineConfig{
		Ledger:         movement_repo.NewMovementRepo(txManager),
		Balances:       stockService,
		Warehouses:     warehouse.NewService(warehouseRepo, txManager, stockService),
		Products:       product.NewService(productRepo, txManager, stockService),
		Counterparties: counterparty.NewService(counterpartyRepo, txManager),
		Numerator:      numerator.NewService(txManager),
		TxManager:      txManager,
	})

	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:   admin.ID.String(),
		Username: admin.Username,
		Name:     admin.Label(),
		Role:     admin.Role,
	})

	mainWH, err := warehouseRepo.GetByCode(ctx, "WH-001")
	if err != nil {
		return fmt.Errorf("load main warehouse: %w", err)
	}
	supplier, err := counterpartyRepo.GetByCode(ctx, "CP-001")
	if err != nil {
		return fmt.Errorf("load supplier: %w", err)
	}
	client, err := counterpartyRepo.GetByCode(ctx, "CP-002")
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}

	posted := 0
	for _, s := range demoProducts {
		p, err := productRepo.GetByCode(ctx, s.code)
		if err != nil {
			return fmt.Errorf("load product %s: %w", s.code, err)
		}

		price := types.MustMoney(s.price)
		_, err = engine.PostInbound(ctx, movements.PostRequest{
			WarehouseID:    mainWH.ID,
			ProductID:      p.ID,
			CounterpartyID: &supplier.ID,
			Quantity:       100,
			UnitPrice:      &price,
			Note:           "opening stock",
		})
		if err != nil {
			return fmt.Errorf("post opening stock for %s: %w", s.code, err)
		}
		posted++
	}

	issues := []struct {
		code     string
		quantity int64
	}{
		{"PR-001", 30},
		{"PR-002", 15},
	}

	for _, iss := range issues {
		p, err := productRepo.GetByCode(ctx, iss.code)
		if err != nil {
			return fmt.Errorf("load product %s: %w", iss.code, err)
		}

		_, err = engine.PostOutbound(ctx, movements.PostRequest{
			WarehouseID:    mainWH.ID,
			ProductID:      p.ID,
			CounterpartyID: &client.ID,
			Quantity:       iss.quantity,
			Note:           "demo issue",
		})
		if err != nil {
			return fmt.Errorf("post demo issue for %s: %w", iss.code, err)
		}
		posted++
	}

	log.Infow("demo movements posted", "count", posted)
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

var DB *gorm.DB

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg.DSN(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	logrus.Info("Database connection established successfully")
	return DB, nil
}

// Open connects with duplicate-key errors translated to gorm.ErrDuplicatedKey.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.UnidadeAdministrativa{},
		&models.Usuario{},
		&models.BemPatrimonial{},
		&models.StatusBemPatrimonial{},
		&models.MovimentacaoBemPatrimonial{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	// at most one pending movement per asset
	pending := "CREATE UNIQUE INDEX IF NOT EXISTS uq_movimentacao_pendente_por_bem " +
		"ON movimentacoes_bens_patrimoniais(bem_patrimonial_id) WHERE status = 'enviada'"
	if err := db.Exec(pending).Error; err != nil {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_usuarios_grupos ON usuarios USING GIN(grupos)",
		"CREATE INDEX IF NOT EXISTS idx_bens_unidade_status ON bens_patrimoniais(unidade_administrativa_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_status_bens_bem_criado ON status_bens_patrimoniais(bem_patrimonial_id, criado_em DESC)",
		"CREATE INDEX IF NOT EXISTS idx_movimentacoes_origem_destino ON movimentacoes_bens_patrimoniais(unidade_origem_id, unidade_destino_id)",
		"CREATE INDEX IF NOT EXISTS idx_movimentacoes_criado ON movimentacoes_bens_patrimoniais(criado_em DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(criado_em DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the first gestor when the database has no users.
func SeedInitialData(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.Usuario{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if admin.Password == "" {
		logrus.Warn("No users found and ADMIN_PASSWORD is empty, skipping admin seed")
		return nil
	}

	logrus.Info("Seeding initial data...")

	user := &models.Usuario{
		Username:    admin.Username,
		Email:       admin.Email,
		Nome:        "Administrador",
		IsActive:    true,
		IsSuperuser: true,
		Grupos:      []string{string(models.PapelGestorPatrimonio)},
	}
	if err := user.SetPassword(admin.Password); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.WithField("username", user.Username).Info("Default admin user created successfully")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

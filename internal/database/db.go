package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logging.Log.Fatalf("could not connect to the database: %v", err)
	}

	if err := Migrate(db); err != nil {
		logging.Log.Fatalf("AutoMigrate failed: %v", err)
	}
	if err := SeedExpenseTypes(db); err != nil {
		logging.Log.Fatalf("seeding expense types failed: %v", err)
	}
	if cfg.AdminPassword != "" {
		created, err := SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logging.Log.Fatalf("seeding admin user failed: %v", err)
		}
		if created {
			logging.WithField("username", cfg.AdminUsername).Info("default admin user created")
		}
	}

	DB = db
	logging.WithField("driver", cfg.DatabaseDriver).Info("database connected, migration complete")
}

// Open connects with the given driver. Constraint violations come back as
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logging.GormLogger(false),
	}

	switch driver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		// one writer at a time; also keeps in-memory databases on a single connection
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// SeedExpenseTypes inserts the default expense types into an empty table.
func SeedExpenseTypes(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ExpenseType{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, name := range models.DefaultExpenseTypes {
			if err := tx.Create(&models.ExpenseType{Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedAdmin creates the admin account unless the username is taken. It
// reports whether a user was created.
func SeedAdmin(db *gorm.DB, username, password string) (bool, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks that the database answers.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ForShare makes every query run through the returned handle take shared
// row locks on Postgres. SQLite serializes writers on its own.
func ForShare(tx *gorm.DB) *gorm.DB {
	return lock(tx, "SHARE")
}

// ForUpdate is ForShare with exclusive row locks.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	return lock(tx, "UPDATE")
}

func lock(tx *gorm.DB, strength string) *gorm.DB {
	if tx.Dialector.Name() != "postgres" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength}).Session(&gorm.Session{})
}

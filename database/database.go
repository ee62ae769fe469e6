package database

import (
	"fmt"
	"form-builder/config"
	"regexp"
	"sync"

	"golang.org/x/exp/slices"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var validDBName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsValidDBName guards tenant names before they reach DDL or a DSN.
func IsValidDBName(name string) bool {
	return validDBName.MatchString(name)
}

func gormConfig() *gorm.Config {
	level := gormlogger.Warn
	if config.IsProduction() {
		level = gormlogger.Error
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}

// OpenDatabaseConnection opens dbName with the configured driver.
func OpenDatabaseConnection(dbName string) (*gorm.DB, error) {
	dialector, err := getDialector(dbName)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, gormConfig())
}

func getDialector(dbName string) (gorm.Dialector, error) {
	switch config.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, dbName, config.DBPort)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, dbName)
		return mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, dbName)
		return sqlserver.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dbName + ".db?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}
}

// EnsureDatabaseExists creates dbName on the server when it is missing.
// SQLite creates its file on open, so there is nothing to do there.
func EnsureDatabaseExists(dbName string) error {
	if !IsValidDBName(dbName) {
		return fmt.Errorf("invalid database name %q", dbName)
	}

	var dialector gorm.Dialector
	switch config.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=postgres port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, config.DBPort)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort)
		dialector = mysql.Open(dsn)
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=master",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort)
		dialector = sqlserver.Open(dsn)
	case "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("connect to DB server: %w", err)
	}
	defer closeDB(db)

	switch config.DBDriver {
	case "postgres":
		var exists bool
		if err := db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", dbName).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			return nil
		}
		return db.Exec("CREATE DATABASE " + dbName).Error
	case "mysql":
		return db.Exec("CREATE DATABASE IF NOT EXISTS " + dbName).Error
	default:
		return db.Exec("IF DB_ID('" + dbName + "') IS NULL CREATE DATABASE " + dbName).Error
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Pool keeps one migrated connection per tenant database.
type Pool struct {
	mu   sync.Mutex
	dbs  map[string]*gorm.DB
	open func(name string) (*gorm.DB, error)
}

// NewPool builds a pool around open. A nil open uses the configured
// driver, creating and migrating the tenant database on first use.
func NewPool(open func(name string) (*gorm.DB, error)) *Pool {
	if open == nil {
		open = openTenant
	}
	return &Pool{dbs: make(map[string]*gorm.DB), open: open}
}

func openTenant(name string) (*gorm.DB, error) {
	if err := EnsureDatabaseExists(name); err != nil {
		return nil, err
	}
	db, err := OpenDatabaseConnection(name)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate %s: %w", name, err)
	}
	return db, nil
}

// Put registers an already opened handle, e.g. the default database.
func (p *Pool) Put(name string, db *gorm.DB) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dbs[name] = db
}

// GetDBConnection returns the handle for name, opening it on first use.
func (p *Pool) GetDBConnection(name string) (*gorm.DB, error) {
	if !IsValidDBName(name) {
		return nil, fmt.Errorf("invalid database name %q", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if db, exists := p.dbs[name]; exists {
		return db, nil
	}

	db, err := p.open(name)
	if err != nil {
		return nil, err
	}
	p.dbs[name] = db
	return db, nil
}

// Names lists the open tenant databases in sorted order.
func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.dbs))
	for name := range p.dbs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, db := range p.dbs {
		closeDB(db)
		delete(p.dbs, name)
	}
}

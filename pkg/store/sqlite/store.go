// Package sqlite provides a ServerStore backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/getmockd/stubdesk/pkg/server"
	"github.com/getmockd/stubdesk/pkg/store"
)

// FileName is the database file name inside the data directory.
const FileName = "stubdesk.db"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// serverRecord is the table row for one server.
type serverRecord struct {
	Name     string `gorm:"primaryKey;size:255"`
	URL      string `gorm:"size:2048;not null"`
	Port     int
	Position int `gorm:"index"`
}

func (serverRecord) TableName() string {
	return "servers"
}

// Options configures the database connection.
type Options struct {
	// DSN is the database path or MemoryDSN. Empty uses FileName in DataDir.
	DSN string
	// DataDir holds the database file when DSN is empty.
	DataDir string
	// Logger is the gorm logger. Defaults to silent.
	Logger logger.Interface
}

// Store implements store.ServerStore on gorm.
type Store struct {
	db *gorm.DB
}

var _ store.ServerStore = (*Store)(nil)

// Open connects to the database and migrates the schema.
func Open(opts Options) (*Store, error) {
	dsn := opts.DSN
	if dsn == "" {
		dataDir := opts.DataDir
		if dataDir == "" {
			dataDir = store.DefaultDataDir()
		}
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, err
		}
		dsn = filepath.Join(dataDir, FileName)
	}

	gormLogger := opts.Logger
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// an in-memory database only lives as long as its connection
	if sqlDB, err := db.DB(); err == nil && dsn == MemoryDSN {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&serverRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// List returns the servers in saved order.
func (s *Store) List(ctx context.Context) ([]server.Server, error) {
	var records []serverRecord
	if err := s.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, err
	}

	servers := make([]server.Server, 0, len(records))
	for _, r := range records {
		servers = append(servers, server.Server{Name: r.Name, URL: r.URL, Port: r.Port})
	}
	return servers, nil
}

// Save replaces all rows in one transaction.
func (s *Store) Save(ctx context.Context, servers []server.Server) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&serverRecord{}).Error; err != nil {
			return err
		}
		for i, srv := range servers {
			record := serverRecord{Name: srv.Name, URL: srv.URL, Port: srv.Port, Position: i}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

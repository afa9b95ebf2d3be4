// Package sqlite provides an accounts.Store backed by an embedded SQLite
// database (github.com/glebarez/sqlite, pure Go, no cgo), for deployments
// that want named accounts to survive a restart without standing up a
// separate database server.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/pkg/accounts"
)

// Store is a GORM-backed accounts.Store. Passwords are hashed with bcrypt
// before being written; the wire protocol's XOR scramble is obfuscation
// only and is unscrambled by the caller before Lookup/Create ever see it.
type Store struct {
	db *gorm.DB
}

// Open connects to (creating if necessary) the SQLite database at path,
// running the embedded accounts schema migration.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create accounts database directory: %w", err)
	}

	// WAL plus a busy timeout lets the occasional rhxdctl write coexist
	// with the server's read-mostly traffic without "database is locked".
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open accounts database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap accounts database handle: %w", err)
	}
	if err := runMigrations(sqlDB); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Lookup(ctx context.Context, login, password string) (*accounts.Account, error) {
	var row accountModel
	err := s.db.WithContext(ctx).Where("login = ?", login).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account %q: %w", login, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		// Deliberately the same error as "no such login": a client must
		// not be able to enumerate valid account names by error shape.
		return nil, accounts.ErrNotFound
	}

	return toAccount(row), nil
}

func (s *Store) Create(ctx context.Context, login, password, nickname string, access wire.AccessPrivileges) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	row := accountModel{
		Login:        login,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Access:       uint64(access),
	}

	err = s.db.WithContext(ctx).Create(&row).Error
	if isUniqueConstraintError(err) {
		return accounts.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create account %q: %w", login, err)
	}
	return nil
}

func (s *Store) SetAccess(ctx context.Context, login string, access wire.AccessPrivileges) error {
	res := s.db.WithContext(ctx).Model(&accountModel{}).
		Where("login = ?", login).
		Update("access", uint64(access))
	if res.Error != nil {
		return fmt.Errorf("set access for %q: %w", login, res.Error)
	}
	if res.RowsAffected == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, login, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&accountModel{}).
		Where("login = ?", login).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return fmt.Errorf("set password for %q: %w", login, res.Error)
	}
	if res.RowsAffected == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, login string) error {
	if err := s.db.WithContext(ctx).Where("login = ?", login).Delete(&accountModel{}).Error; err != nil {
		return fmt.Errorf("delete account %q: %w", login, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]accounts.Account, error) {
	var rows []accountModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]accounts.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toAccount(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}

func toAccount(row accountModel) *accounts.Account {
	return &accounts.Account{
		Login:    row.Login,
		Nickname: row.Nickname,
		Access:   wire.AccessPrivileges(row.Access),
	}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE")
}

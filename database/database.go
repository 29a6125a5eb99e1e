// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// Go'nun database/sql standart kütüphanesi farklı veritabanlarına ortak bir
// arayüz sağlar. Driver import edildiğinde kendini otomatik kaydeder —
// "blank import" (_ "modernc.org/sqlite") bu yüzden kullanılır: import'un
// yan etkisi (side effect) gereklidir.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver — CGO gerekmez, her platformda derlenir
)

// DB, veritabanı bağlantısını saran struct.
// *sql.DB Go'nun built-in connection pool'udur — thread-safe'dir,
// birden fazla goroutine aynı anda güvenle kullanabilir.
type DB struct {
	Conn *sql.DB
}

// New, SQLite bağlantısı açar ve bekleyen migration'ları uygular.
//
// dbPath: SQLite dosya yolu (ör: "./data/quickchat.db"). Testlerde ":memory:"
// geçilebilir — o durumda dizin oluşturma atlanır.
// migrationsFS: migration SQL dosyalarını içeren fs.FS (embed.FS veya os.DirFS).
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// "_pragma=foreign_keys(1)" → FK constraint'leri aktif et (SQLite'ta varsayılan kapalı!)
	// "_pragma=journal_mode(WAL)" → Write-Ahead Logging: eşzamanlı okuma/yazma performansı
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := db.runMigrations(migrationsFS); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("[database] connected and migrations applied")
	return db, nil
}

// Close, veritabanı bağlantısını kapatır.
// Resource cleanup Go'da "defer" ile yapılır: defer db.Close()
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, migrations dizinindeki .sql dosyalarını isim sırasıyla çalıştırır
// (001_init.sql, 002_..., ...).
//
// schema_migrations tablosu hangi dosyaların uygulandığını takip eder —
// sonraki başlatmalarda sadece yeni migration'lar çalışır.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied := make(map[string]bool)
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate migration rows: %w", err)
	}

	for _, file := range sqlFiles {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		// SQLite Exec() çoklu statement kabul eder ama her biri ayrı autocommit'tir —
		// hata durumunda hangi statement'ta kaldığımızı bilmek için tek tek çalıştırıyoruz.
		for i, stmt := range splitStatements(string(content)) {
			if _, err := db.Conn.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s (statement %d): %w", file, i+1, err)
			}
		}

		if _, err := db.Conn.Exec(
			"INSERT INTO schema_migrations (filename) VALUES (?)", file,
		); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

// splitStatements, SQL metnini noktalı virgül ile statement'lara böler.
// String literal içindeki noktalı virgüller ('' escape dahil) yoksayılır.
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if ch == '\'' {
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				current.WriteByte(ch)
				current.WriteByte(sql[i+1])
				i++ // '' escape — iki tırnağı yaz, toggle etme
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			if s := strings.TrimSpace(current.String()); s != "" {
				statements = append(statements, s)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		statements = append(statements, s)
	}

	return statements
}

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DbFile 是 sqlite 数据库的文件名。
const DbFile = "database.db"

// SqliteDB 是对 sqlite 数据库的简单封装。
type SqliteDB struct {
	DB *sql.DB
}

// NewSqliteDB 打开 dir 目录下名为 file 的数据库。file 为 ":memory:" 时打开内存数据库。
func NewSqliteDB(dir, file string) (*SqliteDB, error) {
	dsn := file
	if file != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录: %w", err)
		}
		dsn = filepath.Join(dir, file)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// 内存数据库在每个连接上都是独立的。
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteDB{DB: db}, nil
}

// Close 关闭数据库。
func (s *SqliteDB) Close() error {
	return s.DB.Close()
}

// CreateTable 创建表，表已存在时不做任何事。
func (s *SqliteDB) CreateTable(name string, columns []string) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(columns, ", "))
	_, err := s.DB.Exec(query)
	return err
}

// Insert 插入一行，data 为列名到值的映射。
func (s *SqliteDB) Insert(table string, data map[string]interface{}) error {
	columns := make([]string, 0, len(data))
	for k := range data {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	args := make([]interface{}, len(columns))
	for i, c := range columns {
		args[i] = data[c]
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	_, err := s.DB.Exec(query, args...)
	return err
}

// Exists 判断满足所有条件的行是否存在。
func (s *SqliteDB) Exists(table string, conditions []string, args []interface{}) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s)", table, strings.Join(conditions, " AND "))
	var exists bool
	if err := s.DB.QueryRow(query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

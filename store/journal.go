package store

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/qinglongcn/bpfsign/types"
)

// witnessTable 是已完成见证的表名。
const witnessTable = "witness"

// WitnessRecord 是一条已完成消息的见证记录。
type WitnessRecord struct {
	Id        int             // 自增长主键
	Hash      chainhash.Hash  // 消息哈希
	Type      string          // 消息类型标签
	Witnesses []types.Witness // 按脚本哈希顺序排列的见证
	Signed    []byte          // 附加见证后的完整消息
	CreatedAt time.Time       // 完成时间
}

// Journal 记录已完成消息的见证。
type Journal struct {
	db *SqliteDB
}

// NewJournal 在数据库上创建见证日志，并确保表已存在。
func NewJournal(db *SqliteDB) (*Journal, error) {
	j := &Journal{db: db}
	if err := j.createWitnessTable(); err != nil {
		return nil, err
	}
	return j, nil
}

// createWitnessTable 创建见证表
func (j *Journal) createWitnessTable() error {
	table := []string{
		"id INTEGER PRIMARY KEY AUTOINCREMENT", // 自增长主键
		"hash VARCHAR(64) UNIQUE",              // 消息哈希
		"type VARCHAR(32)",                     // 消息类型
		"witnesses TEXT",                       // 见证 JSON
		"signed TEXT",                          // 完整消息的十六进制
		"createdAt INTEGER",                    // 完成时间
	}

	if err := j.db.CreateTable(witnessTable, table); err != nil {
		return fmt.Errorf("创建见证表失败: %w", err)
	}
	return nil
}

// Exists 判断消息的见证是否已记录。
func (j *Journal) Exists(hash chainhash.Hash) (bool, error) {
	conditions := []string{"hash=?"}
	args := []interface{}{hash.String()}
	exists, err := j.db.Exists(witnessTable, conditions, args)
	if err != nil {
		return false, fmt.Errorf("查询见证失败: %w", err)
	}
	return exists, nil
}

// Record 记录一条见证。同一消息只能记录一次。
func (j *Journal) Record(rec *WitnessRecord) error {
	witnesses, err := json.Marshal(rec.Witnesses)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	data := map[string]interface{}{
		"hash":      rec.Hash.String(),
		"type":      rec.Type,
		"witnesses": string(witnesses),
		"signed":    hex.EncodeToString(rec.Signed),
		"createdAt": createdAt.UnixNano(),
	}
	if err := j.db.Insert(witnessTable, data); err != nil {
		return fmt.Errorf("记录见证失败: %w", err)
	}
	return nil
}

// Get 返回消息的见证记录，不存在时返回 ErrNotFound。
func (j *Journal) Get(hash chainhash.Hash) (*WitnessRecord, error) {
	row := j.db.DB.QueryRow(
		"SELECT id, hash, type, witnesses, signed, createdAt FROM "+witnessTable+" WHERE hash=?",
		hash.String())

	var (
		rec       WitnessRecord
		hashStr   string
		witnesses string
		signed    string
		createdAt int64
	)
	if err := row.Scan(&rec.Id, &hashStr, &rec.Type, &witnesses, &signed, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	h, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		return nil, err
	}
	rec.Hash = *h
	if err := json.Unmarshal([]byte(witnesses), &rec.Witnesses); err != nil {
		return nil, err
	}
	if rec.Signed, err = hex.DecodeString(signed); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdAt)
	return &rec, nil
}

package bpfsign

import (
	"os"
	"path/filepath"
)

// DbPath 返回数据库目录
func (opt *Options) DbPath() string {
	return filepath.Join(opt.RootPath, "db")
}

// ContextDbPath 返回签名上下文数据库目录
func (opt *Options) ContextDbPath() string {
	return filepath.Join(opt.DbPath(), "contexts")
}

// JournalDbPath 返回见证日志数据库目录
func (opt *Options) JournalDbPath() string {
	return filepath.Join(opt.DbPath(), "journal")
}

// LogsPath 返回日志目录
func (opt *Options) LogsPath() string {
	return filepath.Join(opt.RootPath, "logs")
}

// ExchangePath 返回离线交换文件目录
func (opt *Options) ExchangePath() string {
	return filepath.Join(opt.RootPath, "exchange")
}

// initDirectories 确保所有预定义的文件夹都存在
func initDirectories(opt *Options) error {
	directories := []string{
		opt.DbPath(),        // 数据库目录
		opt.ContextDbPath(), // 签名上下文db目录
		opt.JournalDbPath(), // 见证日志db目录
		opt.LogsPath(),      // 日志目录
		opt.ExchangePath(),  // 交换文件目录
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

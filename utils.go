package bpfsign

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/vrecan/death/v3"
)

const (
	logName = "console"
)

// logFilename 返回实例的日志文件路径
func logFilename(dir, instanceId string) string {
	if instanceId != "" {
		return filepath.Join(dir, fmt.Sprintf("%s_%s.log", logName, instanceId))
	}
	return filepath.Join(dir, fmt.Sprintf("%s.log", logName))
}

// SetLog 为每一个实例创建一个log文件，记录日志信息
func SetLog(dir, instanceId string, logLevel logrus.Level) error {
	// logrus 的回调钩子
	rotateFileHook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logFilename(dir, instanceId),
		MaxSize:    50, // 文件最大50M
		MaxBackups: 3,
		MaxAge:     28, // 存储28天
		Level:      logLevel,
		Formatter: &logrus.JSONFormatter{ // 默认为ASCII formatter，转为JSON formatter
			TimestampFormat: "2006-01-02 15:04:05", // 时间戳字符串格式
		},
	})
	if err != nil {
		return fmt.Errorf("初始化文件回调钩子失败: %w", err)
	}

	logrus.SetLevel(logLevel)
	logrus.SetOutput(colorable.NewColorableStdout())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})
	logrus.AddHook(rotateFileHook)

	return nil
}

// WaitForShutdown 阻塞，直到收到程序终止信号，然后关闭签名服务
// syscall.SIGINT ctr+c触发，syscall.SIGTERM 当前进程被kill
func WaitForShutdown(bs *BS) {
	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	d.WaitForDeathWithFunc(func() {
		if err := bs.Close(); err != nil {
			logrus.Errorf("[WaitForShutdown] 关闭签名服务失败:\t%v", err)
		}
	})
}

// generateRandomString 生成一个指定长度的随机字符串
func generateRandomString(length int) (string, error) {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var result strings.Builder
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		result.WriteByte(letters[num.Int64()])
	}
	return result.String(), nil
}

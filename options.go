package bpfsign

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Options 是用于创建签名服务的参数
type Options struct {
	IsOpen  bool `optional:"false"  default:"false"` // 签名服务是否已打开
	Offline bool `optional:"false"  default:"false"` // 离线节点不订阅网络，只通过文件交换上下文

	InstanceId string        // 签名服务的实例标识符
	RootPath   string        // 文件根路径
	LogLevel   logrus.Level  // 日志级别
	SessionTTL time.Duration // 未完成的签名会话保留的时长
}

// DefaultOptions 设置一个推荐选项列表
func DefaultOptions() *Options {
	return &Options{
		RootPath:   filepath.Join(os.TempDir(), "bpfsign"),
		LogLevel:   logrus.InfoLevel,
		SessionTTL: 24 * time.Hour,
		IsOpen:     false,
		Offline:    false,
	}
}

// BuildInstanceId 设置实例ID
func (opt *Options) BuildInstanceId(instanceId ...string) {
	if opt.IsOpen { // 签名服务已打开
		return
	}

	var mac string
	var err error
	if len(instanceId) > 0 {
		mac = instanceId[0]
	} else {
		mac, err = GetPrimaryMACAddress()
		if err != nil {
			// 生成随机字符串作为替代值
			mac, _ = generateRandomString(12)
		}
	}
	opt.InstanceId = mac
}

// BuildRootPath 设置文件根路径
func (opt *Options) BuildRootPath(path string) {
	if opt.IsOpen {
		return
	}

	// 检查路径是否为空
	if path == "" {
		return
	}

	// 检查路径是否是一个绝对路径
	if !filepath.IsAbs(path) {
		return
	}

	// 检查路径是否存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// 如果路径不存在，尝试创建它
		if err := os.MkdirAll(path, 0755); err != nil {
			return
		}
	}

	opt.RootPath = path
}

// BuildLogLevel 设置日志级别
func (opt *Options) BuildLogLevel(level logrus.Level) {
	if opt.IsOpen {
		return
	}

	opt.LogLevel = level
}

// BuildSessionTTL 设置未完成会话的保留时长，0 表示永不过期
func (opt *Options) BuildSessionTTL(ttl time.Duration) {
	if opt.IsOpen || ttl < 0 {
		return
	}

	opt.SessionTTL = ttl
}

// BuildOffline 设置为离线节点
func (opt *Options) BuildOffline() {
	if opt.IsOpen {
		return
	}

	opt.Offline = true
}

// CheckAndSetOptions 检查并设置选项
func (opt *Options) CheckAndSetOptions() error {
	if opt.IsOpen { // 签名服务已打开
		return fmt.Errorf("'%s' 签名服务已打开", opt.InstanceId)
	}
	if opt.RootPath == "" {
		return fmt.Errorf("文件根路径为空")
	}
	if opt.InstanceId == "" {
		opt.BuildInstanceId()
	}

	return nil
}

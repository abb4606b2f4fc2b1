package bpfsign

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// TestGenerateRandomString 测试随机字符串的长度与字符集。
func TestGenerateRandomString(t *testing.T) {
	t.Parallel()

	tests := []int{0, 1, 12, 64}
	t.Logf("Running %d tests", len(tests))
	for _, n := range tests {
		s, err := generateRandomString(n)
		require.NoError(t, err)
		require.Len(t, s, n)
		for _, r := range s {
			require.True(t, (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'))
		}
	}
}

// TestLogFilename 测试日志文件名。
func TestLogFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("logs", "console_abc.log"), logFilename("logs", "abc"))
	require.Equal(t, filepath.Join("logs", "console.log"), logFilename("logs", ""))
}

// TestOptions 测试选项的设置与检查。
func TestOptions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	opt := DefaultOptions()
	opt.BuildRootPath(filepath.Join(root, "sign"))
	opt.BuildRootPath("relative/path")
	opt.BuildInstanceId("node-1")
	opt.BuildLogLevel(logrus.DebugLevel)
	opt.BuildSessionTTL(time.Minute)
	opt.BuildSessionTTL(-time.Minute)
	opt.BuildOffline()

	require.Equal(t, filepath.Join(root, "sign"), opt.RootPath)
	require.DirExists(t, opt.RootPath)
	require.Equal(t, "node-1", opt.InstanceId)
	require.Equal(t, logrus.DebugLevel, opt.LogLevel)
	require.Equal(t, time.Minute, opt.SessionTTL)
	require.True(t, opt.Offline)
	require.NoError(t, opt.CheckAndSetOptions())

	require.Equal(t, filepath.Join(opt.RootPath, "db", "contexts"), opt.ContextDbPath())
	require.NoError(t, initDirectories(opt))
	for _, dir := range []string{opt.ContextDbPath(), opt.JournalDbPath(), opt.LogsPath(), opt.ExchangePath()} {
		require.DirExists(t, dir)
	}

	// 打开后不再接受修改。
	opt.IsOpen = true
	opt.BuildInstanceId("node-2")
	require.Equal(t, "node-1", opt.InstanceId)
	require.Error(t, opt.CheckAndSetOptions())

	empty := &Options{}
	require.Error(t, empty.CheckAndSetOptions())

	generated := DefaultOptions()
	require.NoError(t, generated.CheckAndSetOptions())
	require.NotEmpty(t, generated.InstanceId)
}

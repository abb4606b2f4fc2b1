package bpfsign

import (
	"context"

	"github.com/bpfs/dep2p"
	"github.com/bpfs/dep2p/pubsub"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/qinglongcn/bpfsign/store"
	"github.com/qinglongcn/bpfsign/wallet"
)

// BS提供了与签名服务交互所需的各种函数
type BS struct {
	ctx     context.Context     // 全局上下文
	opt     *Options            // 选项配置
	wallet  wallet.Wallet       // 钱包
	p2p     *dep2p.DeP2P        // 网络主机
	pubsub  *pubsub.DeP2PPubSub // 网络订阅
	store   *store.Store        // 签名上下文存储
	db      *store.SqliteDB     // 见证日志数据库
	journal *store.Journal      // 见证日志
	pool    *SessionPool        // 签名会话池
	files   *FileStore          // 离线交换文件

	app *fx.App
}

// Open 返回一个新的签名服务。离线模式下 p2p 与 pubsub 可以为 nil
func Open(opt *Options, w wallet.Wallet, p2p *dep2p.DeP2P, pubsub *pubsub.DeP2PPubSub) (*BS, error) {
	// 1. 检查并设置选项
	if err := opt.CheckAndSetOptions(); err != nil {
		return nil, err
	}
	if p2p == nil || pubsub == nil {
		opt.Offline = true
	}
	// 2. 本地文件夹
	if err := initDirectories(opt); err != nil {
		return nil, err
	}
	// 3. 日志
	if err := SetLog(opt.LogsPath(), opt.InstanceId, opt.LogLevel); err != nil {
		return nil, err
	}
	useScriptLogger(opt.LogLevel)

	// 4. 本地数据库
	st, err := store.Open(opt.ContextDbPath())
	if err != nil {
		logrus.Errorf("[Open] 打开签名上下文数据库失败:\t%v", err)
		return nil, err
	}
	db, err := store.NewSqliteDB(opt.JournalDbPath(), store.DbFile)
	if err != nil {
		st.Close()
		return nil, err
	}
	// 4.1 数据库表
	journal, err := store.NewJournal(db)
	if err != nil {
		st.Close()
		db.Close()
		return nil, err
	}

	bs := &BS{
		ctx:     context.Background(),
		opt:     opt,
		wallet:  w,
		p2p:     p2p,
		pubsub:  pubsub,
		store:   st,
		db:      db,
		journal: journal,
	}

	// fx 配置项
	opts := []fx.Option{
		fx.NopLogger,
		bs.globalInit(),
		fx.Provide(
			NewSessionPoolWithRestore, // 签名会话池
			NewExchangeFileStore,      // 离线交换文件
		),
		fx.Invoke(
			RegisterPubsubProtocol, // 注册订阅
			StartSignNet,           // 启动签名网络
		),
	}
	opts = append(opts, fx.Populate(
		&bs.pool,
		&bs.files,
	))
	bs.app = fx.New(opts...)

	// 启动所有长时间运行的 goroutine
	if err := bs.app.Start(bs.ctx); err != nil {
		bs.closeStores()
		return nil, err
	}

	opt.IsOpen = true // 签名服务已打开
	return bs, nil
}

// 全局初始化
func (bs *BS) globalInit() fx.Option {
	return fx.Provide(
		// 获取上下文
		func() context.Context {
			return bs.ctx
		},
		func() *Options {
			return bs.opt
		},
		func() *dep2p.DeP2P {
			return bs.p2p
		},
		func() *pubsub.DeP2PPubSub {
			return bs.pubsub
		},
		func() *store.Store {
			return bs.store
		},
		func() *store.Journal {
			return bs.journal
		},
	)
}

type NewExchangeFileStoreInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewExchangeFileStoreOutput struct {
	fx.Out
	Files *FileStore // 离线交换文件
}

// NewExchangeFileStore 在交换目录上创建文件存储
func NewExchangeFileStore(input NewExchangeFileStoreInput) (out NewExchangeFileStoreOutput, err error) {
	files, err := NewFileStore(input.Opt.ExchangePath())
	if err != nil {
		logrus.Errorf("[NewExchangeFileStore] 创建交换目录失败:\t%v", err)
		return out, err
	}
	out.Files = files
	return out, nil
}

func (bs *BS) closeStores() error {
	var first error
	if err := bs.store.Close(); err != nil {
		first = err
	}
	if err := bs.db.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Close 停止签名服务并关闭数据库
func (bs *BS) Close() error {
	if !bs.opt.IsOpen {
		return nil
	}
	if err := bs.app.Stop(bs.ctx); err != nil {
		logrus.Errorf("[Close] 停止服务失败:\t%v", err)
	}
	if bs.pubsub != nil && bs.pubsub.IsSubscribed(PubsubSignContextChannel) {
		if err := bs.pubsub.CancelSubscribeWithTopic(PubsubSignContextChannel); err != nil {
			logrus.Errorf("[Close] 取消订阅失败:\t%v", err)
		}
	}
	bs.opt.IsOpen = false
	return bs.closeStores()
}

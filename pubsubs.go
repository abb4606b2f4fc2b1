package bpfsign

import (
	"context"
	"time"

	"github.com/bpfs/dep2p"
	"github.com/bpfs/dep2p/pubsub"
	"github.com/bpfs/dep2p/streams"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

// 订阅
const (
	// 发送签名上下文
	// 发送：所有节点
	// 接收：所有节点
	PubsubSignContextChannel = "pubsub:sign/context/1.0.0"
)

// expireInterval 是清理过期会话的间隔
const expireInterval = 10 * time.Minute

type RegisterPubsubProtocolInput struct {
	fx.In
	Ctx    context.Context     // 全局上下文
	Opt    *Options            // 选项配置
	P2P    *dep2p.DeP2P        // 网络主机
	PubSub *pubsub.DeP2PPubSub // 网络订阅
	Pool   *SessionPool        // 签名会话池
}

// RegisterPubsubProtocol 注册订阅
func RegisterPubsubProtocol(lc fx.Lifecycle, input RegisterPubsubProtocolInput) {
	if input.Opt.Offline || input.PubSub == nil {
		logrus.Info("离线模式，不注册签名上下文订阅")
		return
	}

	if err := input.PubSub.SubscribeWithTopic(PubsubSignContextChannel, func(request *streams.RequestMessage) {
		if request.Message != nil && input.P2P != nil && request.Message.Sender == input.P2P.Host().ID().String() {
			return
		}
		HandleContext(input.Pool, request)
	}, true); err != nil {
		logrus.Errorf("[RegisterPubsubProtocol] 订阅签名上下文失败:\t%v", err)
	}
}

// SendContext 向网络广播会话的签名上下文
func SendContext(p2p *dep2p.DeP2P, pubsub *pubsub.DeP2PPubSub, pool *SessionPool, hash chainhash.Hash) error {
	doc, err := pool.Export(hash)
	if err != nil {
		logrus.Errorf("[SendContext] 导出签名上下文失败:\t%v", err)
		return err
	}

	// 请求消息
	srm := &streams.RequestMessage{
		Payload: doc,
		Message: &streams.Message{
			Sender: p2p.Host().ID().String(), // 发送方ID
		},
	}

	// 序列化
	requestBytes, err := srm.Marshal()
	if err != nil {
		logrus.Errorf("[SendContext] 编码失败:\t%v", err)
		return err
	}

	if err := pubsub.BroadcastWithTopic(PubsubSignContextChannel, requestBytes); err != nil {
		logrus.Errorf("[SendContext] 广播签名上下文失败:\t%v", err)
		return err
	}

	logrus.Debugf("[SendContext] 已广播签名上下文 %s", hash)
	return nil
}

// HandleContext 处理接收到的签名上下文，合并后若已完成则生成见证
func HandleContext(pool *SessionPool, request *streams.RequestMessage) {
	if request == nil || len(request.Payload) == 0 {
		return
	}

	hash, changed, err := pool.Merge(request.Payload)
	if err != nil {
		logrus.Errorf("[HandleContext] 合并签名上下文失败:\t%v", err)
		return
	}
	if !changed {
		return
	}

	completed, err := pool.IsCompleted(hash)
	if err != nil || !completed {
		return
	}
	if _, err := pool.Finalize(hash); err != nil {
		logrus.Errorf("[HandleContext] 生成见证失败:\t%v", err)
	}
}

// HandleEvents 处理会话池的事件，直到 ctx 结束
func HandleEvents(ctx context.Context, p2p *dep2p.DeP2P, pubsub *pubsub.DeP2PPubSub, pool *SessionPool) {
	ticker := time.NewTicker(expireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case hash := <-pool.Updated: // 上下文有变化，全网广播
			if p2p == nil || pubsub == nil {
				continue
			}
			if err := SendContext(p2p, pubsub, pool, hash); err != nil {
				logrus.Errorf("[HandleEvents] 广播签名上下文失败:\t%v", err)
			}

		case rec := <-pool.Completed:
			logrus.Infof("消息 %s 签名完成，类型 %s，见证 %d 个", rec.Hash, rec.Type, len(rec.Witnesses))

		case now := <-ticker.C:
			for _, hash := range pool.Expire(now) {
				logrus.Warnf("签名会话 %s 已过期", hash)
			}
		}
	}
}

type StartSignNetInput struct {
	fx.In

	Ctx    context.Context     // 全局上下文
	P2P    *dep2p.DeP2P        // 网络主机
	PubSub *pubsub.DeP2PPubSub // 网络订阅
	Pool   *SessionPool        // 签名会话池
}

// StartSignNet 启动签名网络事件处理
func StartSignNet(lc fx.Lifecycle, input StartSignNetInput) {
	ctx, cancel := context.WithCancel(input.Ctx)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// 启用协程，处理会话池事件
			go HandleEvents(ctx, input.P2P, input.PubSub, input.Pool)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

package bpfsign

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/store"
	"github.com/qinglongcn/bpfsign/types"
	"github.com/qinglongcn/bpfsign/wallet"
)

var (
	// ErrSessionNotFound 表示签名会话不存在
	ErrSessionNotFound = errors.New("签名会话不存在")

	// ErrInvalidSignature 表示签名无法通过验证
	ErrInvalidSignature = errors.New("签名无效")
)

// eventQueueSize 是会话事件通道的缓冲数量
const eventQueueSize = 200

// Session 是一条消息的签名会话
type Session struct {
	Hash      chainhash.Hash              // 消息哈希
	Context   *contract.ParametersContext // 参数上下文
	CreatedAt time.Time                   // 创建时间
}

// SessionPool 管理所有未完成的签名会话，所有对上下文的访问都在池的锁内串行化
type SessionPool struct {
	mu       sync.Mutex
	opt      *Options
	store    *store.Store
	journal  *store.Journal
	sessions map[chainhash.Hash]*Session

	Updated   chan chainhash.Hash        // 上下文发生变化的会话（带缓冲的通道，缓冲数量200）
	Completed chan *store.WitnessRecord // 已完成的见证记录（带缓冲的通道，缓冲数量200）

	now func() time.Time
}

// NewSessionPool 创建会话池
func NewSessionPool(opt *Options, st *store.Store, journal *store.Journal) *SessionPool {
	return &SessionPool{
		opt:       opt,
		store:     st,
		journal:   journal,
		sessions:  make(map[chainhash.Hash]*Session),
		Updated:   make(chan chainhash.Hash, eventQueueSize),
		Completed: make(chan *store.WitnessRecord, eventQueueSize),
		now:       time.Now,
	}
}

type NewSessionPoolInput struct {
	fx.In

	Opt     *Options       // 选项配置
	Store   *store.Store   // 上下文存储
	Journal *store.Journal // 见证日志
}

type NewSessionPoolOutput struct {
	fx.Out
	Pool *SessionPool // 签名会话池
}

// NewSessionPoolWithRestore 创建会话池并从存储中恢复未完成的会话
func NewSessionPoolWithRestore(lc fx.Lifecycle, input NewSessionPoolInput) (out NewSessionPoolOutput, err error) {
	pool := NewSessionPool(input.Opt, input.Store, input.Journal)
	n, err := pool.Restore()
	if err != nil {
		logrus.Errorf("[NewSessionPool] 恢复签名会话失败:\t%v", err)
		return out, err
	}
	if n > 0 {
		logrus.Infof("恢复了 %d 个签名会话", n)
	}
	out.Pool = pool
	return out, nil
}

// notify 非阻塞地通知上下文发生了变化
func (p *SessionPool) notify(hash chainhash.Hash) {
	select {
	case p.Updated <- hash:
	default:
		logrus.Warnf("[SessionPool] 更新队列已满，丢弃通知 %s", hash)
	}
}

// sessionRecord 是会话在存储中的形式
type sessionRecord struct {
	CreatedAt int64           `json:"createdAt"` // 创建时间（纳秒）
	Context   json.RawMessage `json:"context"`   // 签名上下文文档
}

// persist 把会话的上下文和创建时间写入存储
func (p *SessionPool) persist(s *Session) error {
	doc, err := s.Context.MarshalJSON()
	if err != nil {
		return err
	}
	b, err := json.Marshal(sessionRecord{CreatedAt: s.CreatedAt.UnixNano(), Context: doc})
	if err != nil {
		return err
	}
	return p.store.PutContext(s.Hash, b)
}

// changed 在上下文变化后持久化并发出通知
func (p *SessionPool) changed(s *Session) error {
	if err := p.persist(s); err != nil {
		logrus.Errorf("[SessionPool] 保存签名上下文失败:\t%v", err)
		return err
	}
	p.notify(s.Hash)
	return nil
}

func (p *SessionPool) session(hash chainhash.Hash) (*Session, error) {
	s, ok := p.sessions[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, hash)
	}
	return s, nil
}

// Open 为消息打开签名会话，会话已存在时直接返回其哈希
func (p *SessionPool) Open(v types.Verifiable) (chainhash.Hash, error) {
	hash := v.Hash()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.sessions[hash]; ok {
		return hash, nil
	}
	exists, err := p.journal.Exists(hash)
	if err != nil {
		return hash, err
	}
	if exists {
		return hash, fmt.Errorf("消息 %s 已完成签名", hash)
	}

	ctx := contract.NewParametersContext(v)
	if err := ctx.CheckRequirement(); err != nil {
		return hash, err
	}
	s := &Session{Hash: hash, Context: ctx, CreatedAt: p.now()}
	p.sessions[hash] = s
	if err := p.persist(s); err != nil {
		delete(p.sessions, hash)
		return hash, err
	}
	return hash, nil
}

// View 在池的锁内访问会话的上下文，fn 不能保留上下文的引用
func (p *SessionPool) View(hash chainhash.Hash, fn func(ctx *contract.ParametersContext) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.session(hash)
	if err != nil {
		return err
	}
	return fn(s.Context)
}

// IsCompleted 返回会话是否已收集到足够的参数
func (p *SessionPool) IsCompleted(hash chainhash.Hash) (bool, error) {
	var completed bool
	err := p.View(hash, func(ctx *contract.ParametersContext) error {
		completed = ctx.Completed()
		return nil
	})
	return completed, err
}

// Hashes 返回所有会话的消息哈希
func (p *SessionPool) Hashes() []chainhash.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()

	hashes := make([]chainhash.Hash, 0, len(p.sessions))
	for h := range p.sessions {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].String() < hashes[j].String()
	})
	return hashes
}

// RegisterContract 登记合约，之后可以只凭脚本哈希为它添加签名
func (p *SessionPool) RegisterContract(c *contract.Contract) error {
	if err := checkContractStandard(c); err != nil {
		return err
	}
	return p.store.PutContract(c)
}

// Contract 返回已登记的合约
func (p *SessionPool) Contract(scriptHash types.Uint160) (*contract.Contract, error) {
	return p.store.GetContract(scriptHash)
}

// AddSignature 验证签名后把它加入会话
func (p *SessionPool) AddSignature(hash chainhash.Hash, c *contract.Contract, pubKey *btcec.PublicKey, signature []byte) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.session(hash)
	if err != nil {
		return false, err
	}
	if !wallet.VerifySignature(s.Context.HashData(), signature, pubKey) {
		return false, ErrInvalidSignature
	}
	ok, err := s.Context.AddSignature(c, pubKey, signature)
	if err != nil || !ok {
		return ok, err
	}
	return true, p.changed(s)
}

// Add 把参数加入会话的指定槽位
func (p *SessionPool) Add(hash chainhash.Hash, c *contract.Contract, index int, value contract.Parameter) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.session(hash)
	if err != nil {
		return false, err
	}
	if value.Type == contract.SignatureType {
		if embedded := c.SignaturePublicKey(); embedded != nil {
			pub, err := btcec.ParsePubKey(embedded)
			if err != nil {
				return false, err
			}
			sig, _ := value.Value.([]byte)
			if !wallet.VerifySignature(s.Context.HashData(), sig, pub) {
				return false, ErrInvalidSignature
			}
		}
	}
	ok, err := s.Context.Add(c, index, value)
	if err != nil || !ok {
		return ok, err
	}
	return true, p.changed(s)
}

// Sign 用钱包中的密钥为会话签名
func (p *SessionPool) Sign(hash chainhash.Hash, w wallet.Wallet) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.session(hash)
	if err != nil {
		return false, err
	}
	ok, err := wallet.Sign(w, s.Context)
	if err != nil {
		return ok, err
	}
	if !ok {
		return false, nil
	}
	return true, p.changed(s)
}

// verifyContext 验证上下文中所有能够验证的签名：多重签名条目收集的签名，以及单签名脚本的签名参数
func verifyContext(ctx *contract.ParametersContext) error {
	data := ctx.HashData()
	for _, h := range ctx.ScriptHashes() {
		for k, sig := range ctx.GetSignatures(h) {
			raw, err := hex.DecodeString(k)
			if err != nil {
				return err
			}
			pub, err := btcec.ParsePubKey(raw)
			if err != nil {
				return err
			}
			if !wallet.VerifySignature(data, sig, pub) {
				return fmt.Errorf("%w: %s 的签名", ErrInvalidSignature, k)
			}
		}

		c := ctx.GetContract(h)
		if c == nil {
			continue
		}
		embedded := c.SignaturePublicKey()
		p := ctx.GetParameter(h, 0)
		if embedded == nil || p == nil {
			continue
		}
		pub, err := btcec.ParsePubKey(embedded)
		if err != nil {
			return err
		}
		sig, _ := p.Value.([]byte)
		if !wallet.VerifySignature(data, sig, pub) {
			return fmt.Errorf("%w: %s 的签名参数", ErrInvalidSignature, h)
		}
	}
	return nil
}

// Merge 把收到的上下文文档合并到对应的会话，会话不存在时以文档创建会话
func (p *SessionPool) Merge(doc []byte) (chainhash.Hash, bool, error) {
	other, err := contract.ParseParametersContext(doc)
	if err != nil {
		return chainhash.Hash{}, false, err
	}
	hash := other.Verifiable().Hash()

	if err := verifyContext(other); err != nil {
		return hash, false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[hash]
	if !ok {
		exists, err := p.journal.Exists(hash)
		if err != nil {
			return hash, false, err
		}
		if exists {
			return hash, false, nil
		}
		s = &Session{Hash: hash, Context: other, CreatedAt: p.now()}
		p.sessions[hash] = s
		return hash, true, p.changed(s)
	}

	changed, err := s.Context.Merge(other)
	if err != nil || !changed {
		return hash, false, err
	}
	return hash, true, p.changed(s)
}

// Export 返回会话的上下文文档
func (p *SessionPool) Export(hash chainhash.Hash) ([]byte, error) {
	var doc []byte
	err := p.View(hash, func(ctx *contract.ParametersContext) error {
		var err error
		doc, err = ctx.MarshalJSON()
		return err
	})
	return doc, err
}

// serializable 是能够输出附加见证后完整字节的消息
type serializable interface {
	Bytes() []byte
}

// Finalize 为已完成的会话组装见证并附加到消息上，记录到见证日志后关闭会话
func (p *SessionPool) Finalize(hash chainhash.Hash) (*store.WitnessRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.session(hash)
	if err != nil {
		return nil, err
	}
	witnesses, err := s.Context.GetWitnesses()
	if err != nil {
		return nil, err
	}
	// 先在消息的副本上附加见证，记录成功后才修改会话中的消息。
	v := s.Context.Verifiable()
	signed, err := types.DecodeVerifiable(v.TypeTag(), s.Context.HashData())
	if err != nil {
		signed = nil
	}
	target := signed
	if target == nil {
		target = v
	}
	prev := v.Witnesses()
	if err := target.SetWitnesses(witnesses); err != nil {
		return nil, err
	}

	rec := &store.WitnessRecord{
		Hash:      hash,
		Type:      v.TypeTag(),
		Witnesses: witnesses,
		CreatedAt: p.now(),
	}
	if sv, ok := target.(serializable); ok {
		rec.Signed = sv.Bytes()
	}
	if err := p.journal.Record(rec); err != nil {
		if signed == nil && len(prev) > 0 {
			_ = v.SetWitnesses(prev)
		}
		return nil, err
	}
	if signed != nil {
		if err := v.SetWitnesses(witnesses); err != nil {
			logrus.Errorf("[SessionPool.Finalize] 附加见证失败:\t%v", err)
		}
	}
	if err := p.store.DeleteContext(hash); err != nil {
		logrus.Errorf("[SessionPool.Finalize] 删除签名上下文失败:\t%v", err)
	}
	delete(p.sessions, hash)

	select {
	case p.Completed <- rec:
	default:
		logrus.Warnf("[SessionPool.Finalize] 完成队列已满，丢弃通知 %s", hash)
	}
	return rec, nil
}

// Restore 从存储中恢复未完成的会话，返回恢复的数量。无法解析的文档会被删除
func (p *SessionPool) Restore() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var broken []chainhash.Hash
	n := 0
	err := p.store.ForEachContext(func(hash chainhash.Hash, b []byte) error {
		var rec sessionRecord
		var ctx *contract.ParametersContext
		err := json.Unmarshal(b, &rec)
		if err == nil {
			ctx, err = contract.ParseParametersContext(rec.Context)
		}
		if err != nil || ctx.Verifiable().Hash() != hash {
			logrus.Errorf("[SessionPool.Restore] 解析签名上下文 %s 失败:\t%v", hash, err)
			broken = append(broken, hash)
			return nil
		}
		if _, ok := p.sessions[hash]; !ok {
			createdAt := p.now()
			if rec.CreatedAt != 0 {
				createdAt = time.Unix(0, rec.CreatedAt)
			}
			p.sessions[hash] = &Session{Hash: hash, Context: ctx, CreatedAt: createdAt}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	for _, hash := range broken {
		if err := p.store.DeleteContext(hash); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Expire 删除创建时间早于 now 减去会话保留时长的会话，返回被删除的哈希
func (p *SessionPool) Expire(now time.Time) []chainhash.Hash {
	if p.opt.SessionTTL <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var expired []chainhash.Hash
	for hash, s := range p.sessions {
		if now.Sub(s.CreatedAt) <= p.opt.SessionTTL {
			continue
		}
		if err := p.store.DeleteContext(hash); err != nil {
			logrus.Errorf("[SessionPool.Expire] 删除签名上下文失败:\t%v", err)
			continue
		}
		delete(p.sessions, hash)
		expired = append(expired, hash)
	}
	return expired
}

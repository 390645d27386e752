package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"taskflow/pkg/logger"

	"github.com/gorilla/websocket"
)

// Config WebSocket配置
type Config struct {
	PingInterval   time.Duration // 心跳间隔
	WriteWait      time.Duration // 写超时
	ReadWait       time.Duration // 读超时
	MaxMessageSize int64         // 最大消息大小
}

// DefaultConfig 默认WebSocket配置
func DefaultConfig() *Config {
	return &Config{
		PingInterval:   30 * time.Second,
		WriteWait:      10 * time.Second,
		ReadWait:       60 * time.Second,
		MaxMessageSize: 1024,
	}
}

// Event 业务事件
type Event struct {
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	UserID     string    `json:"user_id"`
	Time       time.Time `json:"time"`
}

// Message 推送给客户端的消息
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CounterKeyPrefix 持久化计数器的键前缀
const CounterKeyPrefix = "taskflow:stats:"

// CounterStore 持久化计数器，由 pkg/redis.Client 实现
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Counters(ctx context.Context, prefix string) (map[string]int64, error)
}

// Hub 管理端实时动态：统计业务事件并广播给已连接的客户端
type Hub struct {
	mu        sync.RWMutex
	clients   map[*websocket.Conn]*client
	broadcast chan Event
	config    *Config

	statsMu sync.Mutex
	counts  map[string]int64
	store   CounterStore
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub 创建新的Hub，store 可以为 nil
func NewHub(config *Config, store CounterStore) *Hub {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.WriteWait <= 0 {
		config.WriteWait = defaults.WriteWait
	}
	if config.ReadWait <= 0 {
		config.ReadWait = defaults.ReadWait
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]*client),
		broadcast: make(chan Event, 100), // 缓冲区大小为100
		config:    config,
		counts:    make(map[string]int64),
		store:     store,
	}
}

// Run 分发事件，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.broadcast:
			h.send(Message{Type: "activity", Payload: ev})
		case <-ticker.C:
			h.ping()
		}
	}
}

// Record 记录事件，实现 service.ActivityRecorder
func (h *Hub) Record(action, resource, resourceID, userID string) {
	key := fmt.Sprintf("%s.%s", resource, action)

	h.statsMu.Lock()
	h.counts[key]++
	h.statsMu.Unlock()

	if h.store != nil {
		n, err := h.store.Incr(context.Background(), CounterKeyPrefix+key)
		if err != nil {
			logger.Warn("failed to persist activity counter %s: %v", key, err)
		} else {
			h.merge(map[string]int64{key: n})
		}
	}

	ev := Event{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		UserID:     userID,
		Time:       time.Now(),
	}
	select {
	case h.broadcast <- ev:
	default:
		// 队列已满时丢弃，计数已记录
		logger.Warn("activity queue full, dropping %s event", key)
	}
}

// Restore 从持久化存储载入计数，进程重启后统计延续之前的值
func (h *Hub) Restore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	persisted, err := h.store.Counters(ctx, CounterKeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to restore activity counters: %w", err)
	}
	h.merge(persisted)
	return nil
}

// merge 取较大值，持久化的计数包含本进程已记录的事件
func (h *Hub) merge(counts map[string]int64) {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	for k, v := range counts {
		if v > h.counts[k] {
			h.counts[k] = v
		}
	}
}

// Counts 返回各事件的计数快照，键为 resource.action
func (h *Hub) Counts() map[string]int64 {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	out := make(map[string]int64, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// AddClient 添加新的WebSocket客户端
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	h.mu.Unlock()

	// 启动客户端读取协程
	go h.readPump(conn)
}

// RemoveClient 移除WebSocket客户端
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount 获取当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) send(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal websocket message: %v", err)
		return
	}
	h.each(func(c *client) error {
		return c.write(websocket.TextMessage, data, h.config.WriteWait)
	})
}

func (h *Hub) ping() {
	h.each(func(c *client) error {
		return c.write(websocket.PingMessage, nil, h.config.WriteWait)
	})
}

// each 对所有客户端执行写操作，失败的连接会被移除
func (h *Hub) each(fn func(*client) error) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := fn(c); err != nil {
			logger.Warn("Failed to write to websocket: %v", err)
			h.RemoveClient(c.conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (c *client) write(messageType int, data []byte, wait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wait))
	return c.conn.WriteMessage(messageType, data)
}

// readPump 处理来自客户端的消息
func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.RemoveClient(conn)

	conn.SetReadLimit(h.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.config.ReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.ReadWait))
	})

	for {
		// 读取消息（主要用于检测连接状态）
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket error: %v", err)
			}
			return
		}
	}
}

package service

import (
	"care_training_backend/pkg/logger"
	"care_training_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32

	forumChannel = "forum_events"
)

const (
	EventReplyCreated = "reply.created"
	EventLikeUpdated  = "like.updated"
)

var errHubStopped = errors.New("forum hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ForumEvent 推送给帖子订阅者的事件
type ForumEvent struct {
	Type     string      `json:"type"`
	ThreadID string      `json:"threadId"`
	Data     interface{} `json:"data"`
}

// ForumPublisher 论坛服务只依赖发布能力
type ForumPublisher interface {
	Publish(event ForumEvent)
}

type forumClient struct {
	hub      *ForumHub
	conn     *websocket.Conn
	send     chan []byte
	threadID string
	userID   uint
}

// readPump 客户端不发业务消息，只处理 pong 和关闭
func (c *forumClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("Forum websocket unexpected close", zap.Error(err), zap.Uint("userId", c.userID))
			}
			return
		}
	}
}

func (c *forumClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ForumHub 按帖子分组的 websocket 订阅；配置了 Redis 时事件经频道在多实例间转发
type ForumHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*forumClient]bool

	register   chan *forumClient
	unregister chan *forumClient
	deliver    chan []byte
	done       chan struct{}
	Redis      *redis.Client
}

func NewForumHub(rdb *redis.Client) *ForumHub {
	return &ForumHub{
		rooms:      make(map[string]map[*forumClient]bool),
		register:   make(chan *forumClient),
		unregister: make(chan *forumClient),
		deliver:    make(chan []byte, 256),
		done:       make(chan struct{}),
		Redis:      rdb,
	}
}

// Run 阻塞直到 ctx 结束，结束时关闭所有连接
func (h *ForumHub) Run(ctx context.Context) {
	defer close(h.done)
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(ctx, forumChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				select {
				case h.deliver <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			room := h.rooms[c.threadID]
			if room == nil {
				room = make(map[*forumClient]bool)
				h.rooms[c.threadID] = room
			}
			room[c] = true
			h.mu.Unlock()
			monitoring.ForumConnections.Inc()

		case c := <-h.unregister:
			h.remove(c)

		case raw := <-h.deliver:
			h.fanout(raw)

		case <-ctx.Done():
			h.mu.Lock()
			for threadID, room := range h.rooms {
				for c := range room {
					close(c.send)
					monitoring.ForumConnections.Dec()
				}
				delete(h.rooms, threadID)
			}
			h.mu.Unlock()
			logger.Log.Info("Forum hub stopped")
			return
		}
	}
}

func (h *ForumHub) remove(c *forumClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.threadID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	monitoring.ForumConnections.Dec()
	if len(room) == 0 {
		delete(h.rooms, c.threadID)
	}
}

func (h *ForumHub) fanout(raw []byte) {
	var head struct {
		ThreadID string `json:"threadId"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		logger.Log.Error("Forum event decode error", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*forumClient
	for c := range h.rooms[head.ThreadID] {
		select {
		case c.send <- raw:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// 发送队列满的连接直接断开
	for _, c := range slow {
		h.remove(c)
	}
}

// Publish 不阻塞调用方，队列满时丢弃事件
func (h *ForumHub) Publish(event ForumEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Forum event encode error", zap.Error(err))
		return
	}

	if h.Redis != nil {
		err := h.Redis.Publish(context.Background(), forumChannel, raw).Err()
		if err == nil {
			return
		}
		logger.Log.Warn("Forum event publish to redis failed, delivering locally", zap.Error(err))
	}

	select {
	case h.deliver <- raw:
	default:
		logger.Log.Warn("Forum event dropped", zap.String("type", event.Type), zap.String("thread_id", event.ThreadID))
	}
}

// Subscribers 某个帖子当前的连接数
func (h *ForumHub) Subscribers(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[threadID])
}

// ServeWS 升级连接并订阅 threadID
func (h *ForumHub) ServeWS(w http.ResponseWriter, r *http.Request, threadID string, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &forumClient{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		threadID: threadID,
		userID:   userID,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

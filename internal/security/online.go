package security

import (
	"sync"
	"time"
)

// OnlineUser 在线用户信息
type OnlineUser struct {
	UserID   int64     `json:"userId"`
	Username string    `json:"username"`
	IP       string    `json:"ip"`
	LoginAt  time.Time `json:"loginAt"`
}

// OnlineRegistry 在线用户注册表。
// 进程启动时创建、关停时销毁的显式对象，互斥锁保护内部状态；
// 登录登出通过 Connect/Disconnect 显式变更，不依赖环境全局状态。
type OnlineRegistry struct {
	mu    sync.RWMutex
	users map[int64]*OnlineUser
}

// NewOnlineRegistry 创建在线用户注册表
func NewOnlineRegistry() *OnlineRegistry {
	return &OnlineRegistry{
		users: make(map[int64]*OnlineUser),
	}
}

// Connect 登记用户上线
func (r *OnlineRegistry) Connect(userID int64, username, ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[userID] = &OnlineUser{
		UserID:   userID,
		Username: username,
		IP:       ip,
		LoginAt:  time.Now(),
	}
}

// Disconnect 登记用户下线
func (r *OnlineRegistry) Disconnect(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, userID)
}

// List 获取当前在线用户快照
func (r *OnlineRegistry) List() []*OnlineUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*OnlineUser, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		list = append(list, &copied)
	}
	return list
}

// Count 当前在线人数
func (r *OnlineRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Close 关停时清空注册表
func (r *OnlineRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[int64]*OnlineUser)
}

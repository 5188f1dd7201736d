package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"vidhub-go/internal/model"
)

// Users 内存用户仓储，邮箱唯一
type Users struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*model.User
}

func NewUsers() *Users {
	return &Users{users: map[int64]*model.User{}}
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return conflict("email")
		}
	}
	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (r *Users) GetByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *Users) List(_ context.Context, skip, limit int) ([]model.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, skip, limit), int64(len(all)), nil
}

func (r *Users) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return notFound("user")
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Subscriptions 内存订阅仓储
type Subscriptions struct {
	mu   sync.Mutex
	seq  int64
	subs []model.Subscription
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{}
}

func (r *Subscriptions) index(subscriberID, channelID int64) int {
	for i, s := range r.subs {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			return i
		}
	}
	return -1
}

func (r *Subscriptions) Create(_ context.Context, subscriberID, channelID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(subscriberID, channelID) >= 0 {
		return conflict("subscription")
	}
	r.seq++
	r.subs = append(r.subs, model.Subscription{
		ID:           r.seq,
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

func (r *Subscriptions) Delete(_ context.Context, subscriberID, channelID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(subscriberID, channelID)
	if i < 0 {
		return false, nil
	}
	r.subs = append(r.subs[:i], r.subs[i+1:]...)
	return true, nil
}

func (r *Subscriptions) Exists(_ context.Context, subscriberID, channelID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index(subscriberID, channelID) >= 0, nil
}

func (r *Subscriptions) ListChannels(_ context.Context, subscriberID int64, skip, limit int) ([]int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	// 按订阅时间倒序，seq 单调递增可替代时间戳
	for i := len(r.subs) - 1; i >= 0; i-- {
		if r.subs[i].SubscriberID == subscriberID {
			ids = append(ids, r.subs[i].ChannelID)
		}
	}
	return page(ids, skip, limit), int64(len(ids)), nil
}

func (r *Subscriptions) CountSubscribers(_ context.Context, channelID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

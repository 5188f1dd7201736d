// Package memrepo 提供与 MongoDB/PostgreSQL 仓储语义一致的内存实现，
// 用于 storage.driver=memory 的本地运行以及测试。
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"vidhub-go/internal/errs"
	"vidhub-go/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notFound(what string) error {
	return errs.Newf(errs.ErrNotFound, "%s not found", what)
}

func conflict(what string) error {
	return errs.Newf(errs.ErrConflict, "duplicate %s", what)
}

// Videos 内存视频仓储
type Videos struct {
	mu     sync.RWMutex
	byOID  map[primitive.ObjectID]*model.Video
	byID   map[string]primitive.ObjectID
	failOn map[string]error
}

func NewVideos() *Videos {
	return &Videos{
		byOID:  map[primitive.ObjectID]*model.Video{},
		byID:   map[string]primitive.ObjectID{},
		failOn: map[string]error{},
	}
}

// FailOn 让指定方法返回错误（测试故障注入）
func (r *Videos) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[method] = err
}

func (r *Videos) fail(method string) error {
	return r.failOn[method]
}

func (r *Videos) Create(_ context.Context, v *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("Create"); err != nil {
		return err
	}
	if _, ok := r.byID[v.ID]; ok {
		return conflict("video id")
	}
	if v.ObjectID.IsZero() {
		v.ObjectID = primitive.NewObjectID()
	}
	cp := *v
	r.byOID[v.ObjectID] = &cp
	r.byID[v.ID] = v.ObjectID
	return nil
}

func (r *Videos) GetByRef(_ context.Context, ref string) (*model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.fail("GetByRef"); err != nil {
		return nil, err
	}
	if oid, ok := r.byID[ref]; ok {
		cp := *r.byOID[oid]
		return &cp, nil
	}
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		if v, ok := r.byOID[oid]; ok {
			cp := *v
			return &cp, nil
		}
	}
	return nil, notFound("video")
}

func (r *Videos) GetByIDs(_ context.Context, ids []string) ([]model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Video{}
	for _, id := range ids {
		if oid, ok := r.byID[id]; ok {
			out = append(out, *r.byOID[oid])
		}
	}
	return out, nil
}

// sorted 按 createdAt 倒序返回副本
func (r *Videos) sorted() []model.Video {
	out := make([]model.Video, 0, len(r.byOID))
	for _, v := range r.byOID {
		out = append(out, *v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ObjectID.Hex() > out[j].ObjectID.Hex()
	})
	return out
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 || skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if limit <= 0 || end < skip || end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func (r *Videos) List(_ context.Context, skip, limit int) ([]model.Video, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted()
	return page(all, skip, limit), int64(len(all)), nil
}

func (r *Videos) ListAll(_ context.Context) ([]model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(), nil
}

func (r *Videos) ListByOwner(_ context.Context, owner int64) ([]model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Video{}
	for _, v := range r.sorted() {
		if v.OwnedBy(owner) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *Videos) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byOID)), nil
}

func (r *Videos) Update(_ context.Context, oid primitive.ObjectID, upd *model.VideoUpdate) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byOID[oid]
	if !ok {
		return nil, notFound("video")
	}
	upd.Apply(v)
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	return &cp, nil
}

func (r *Videos) Delete(_ context.Context, oid primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("Delete"); err != nil {
		return err
	}
	v, ok := r.byOID[oid]
	if !ok {
		return notFound("video")
	}
	delete(r.byID, v.ID)
	delete(r.byOID, oid)
	return nil
}

func (r *Videos) IncrementViews(_ context.Context, oid primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("IncrementViews"); err != nil {
		return 0, err
	}
	v, ok := r.byOID[oid]
	if !ok {
		return 0, notFound("video")
	}
	v.Views++
	return int64(v.Views), nil
}

func (r *Videos) AdjustLikes(_ context.Context, oid primitive.ObjectID, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("AdjustLikes"); err != nil {
		return 0, err
	}
	v, ok := r.byOID[oid]
	if !ok {
		return 0, notFound("video")
	}
	if v.LikesCount+delta >= 0 {
		v.LikesCount += delta
	}
	return v.LikesCount, nil
}

// MigrateLegacyViews 内存中的播放量始终为整数，无需迁移
func (r *Videos) MigrateLegacyViews(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.fail("MigrateLegacyViews"); err != nil {
		return 0, err
	}
	return 0, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
}

// textScore 近似 MongoDB 文本索引：按整词匹配，任一词命中即匹配，title/description/category 权重 10/2/1
func textScore(v *model.Video, terms []string) float64 {
	fields := []struct {
		tokens map[string]bool
		weight float64
	}{
		{tokenSet(v.Title), 10},
		{tokenSet(v.Description), 2},
		{tokenSet(v.Category), 1},
	}
	var score float64
	for _, t := range terms {
		for _, f := range fields {
			if f.tokens[t] {
				score += f.weight
			}
		}
	}
	return score
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(s) {
		set[tok] = true
	}
	return set
}

func (r *Videos) Search(_ context.Context, q *model.SearchQuery) ([]model.VideoHit, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.fail("Search"); err != nil {
		return nil, 0, err
	}

	terms := tokenize(q.Text)
	hits := []model.VideoHit{}
	for _, v := range r.sorted() {
		if q.Category != "" && v.Category != q.Category {
			continue
		}
		if q.Year != "" && v.Year != q.Year {
			continue
		}
		hit := model.VideoHit{Video: v}
		if q.HasText() {
			hit.Score = textScore(&v, terms)
			if hit.Score == 0 {
				continue
			}
		}
		hits = append(hits, hit)
	}

	switch {
	case q.Sort == model.SortViews:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Views > hits[j].Views })
	case q.Sort == model.SortRelevance && q.HasText():
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}
	return page(hits, q.Skip, q.Limit), int64(len(hits)), nil
}

func (r *Videos) Distinct(_ context.Context, field string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, v := range r.byOID {
		val := ""
		switch field {
		case "category":
			val = v.Category
		case "year":
			val = v.Year
		}
		if val != "" && !seen[val] {
			seen[val] = true
			out = append(out, val)
		}
	}
	return out, nil
}

// Comments 内存评论仓储
type Comments struct {
	mu       sync.RWMutex
	comments map[primitive.ObjectID]*model.Comment
	failOn   map[string]error
}

func NewComments() *Comments {
	return &Comments{comments: map[primitive.ObjectID]*model.Comment{}, failOn: map[string]error{}}
}

// FailOn 让指定方法返回错误（测试故障注入）
func (r *Comments) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[method] = err
}

func (r *Comments) Create(_ context.Context, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *Comments) GetByID(_ context.Context, id string) (*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("comment")
	}
	c, ok := r.comments[oid]
	if !ok {
		return nil, notFound("comment")
	}
	cp := *c
	return &cp, nil
}

func (r *Comments) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return notFound("comment")
	}
	delete(r.comments, id)
	return nil
}

func (r *Comments) ListByVideo(_ context.Context, videoID string, before *time.Time, limit int) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Comment{}
	for _, c := range r.comments {
		if c.VideoID != videoID {
			continue
		}
		if before != nil && !c.CreatedAt.Before(*before) {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return page(out, 0, limit), nil
}

func (r *Comments) DeleteByVideo(_ context.Context, videoID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn["DeleteByVideo"]; err != nil {
		return 0, err
	}
	var n int64
	for id, c := range r.comments {
		if c.VideoID == videoID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *Comments) CountByVideos(_ context.Context, videoIDs []string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := map[string]bool{}
	for _, id := range videoIDs {
		set[id] = true
	}
	var n int64
	for _, c := range r.comments {
		if set[c.VideoID] {
			n++
		}
	}
	return n, nil
}

type likeKey struct {
	user  int64
	video string
}

// Likes 内存点赞仓储，(user, video) 唯一
type Likes struct {
	mu     sync.Mutex
	likes  map[likeKey]time.Time
	failOn map[string]error
}

func NewLikes() *Likes {
	return &Likes{likes: map[likeKey]time.Time{}, failOn: map[string]error{}}
}

// FailOn 让指定方法返回错误（测试故障注入）
func (r *Likes) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[method] = err
}

func (r *Likes) Create(_ context.Context, userID int64, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn["Create"]; err != nil {
		return err
	}
	k := likeKey{userID, videoID}
	if _, ok := r.likes[k]; ok {
		return conflict("like")
	}
	r.likes[k] = time.Now().UTC()
	return nil
}

func (r *Likes) Delete(_ context.Context, userID int64, videoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{userID, videoID}
	if _, ok := r.likes[k]; !ok {
		return false, nil
	}
	delete(r.likes, k)
	return true, nil
}

func (r *Likes) Exists(_ context.Context, userID int64, videoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.likes[likeKey{userID, videoID}]
	return ok, nil
}

func (r *Likes) DeleteByVideo(_ context.Context, videoID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn["DeleteByVideo"]; err != nil {
		return 0, err
	}
	var n int64
	for k := range r.likes {
		if k.video == videoID {
			delete(r.likes, k)
			n++
		}
	}
	return n, nil
}

// CountByVideo 测试辅助：某视频的点赞记录数
func (r *Likes) CountByVideo(videoID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.likes {
		if k.video == videoID {
			n++
		}
	}
	return n
}

// Playlists 内存播放列表仓储，(user, name) 唯一
type Playlists struct {
	mu        sync.Mutex
	playlists map[primitive.ObjectID]*model.Playlist
}

func NewPlaylists() *Playlists {
	return &Playlists{playlists: map[primitive.ObjectID]*model.Playlist{}}
}

func (r *Playlists) nameTaken(userID int64, name string, except primitive.ObjectID) bool {
	for id, p := range r.playlists {
		if id != except && p.UserID == userID && p.Name == name {
			return true
		}
	}
	return false
}

func clonePlaylist(p *model.Playlist) *model.Playlist {
	cp := *p
	cp.Videos = append([]string{}, p.Videos...)
	return &cp
}

func (r *Playlists) Create(_ context.Context, p *model.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(p.UserID, p.Name, primitive.NilObjectID) {
		return conflict("playlist name")
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	r.playlists[p.ID] = clonePlaylist(p)
	return nil
}

func (r *Playlists) GetByID(_ context.Context, id string) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("playlist")
	}
	p, ok := r.playlists[oid]
	if !ok {
		return nil, notFound("playlist")
	}
	return clonePlaylist(p), nil
}

func (r *Playlists) ListByUser(_ context.Context, userID int64) ([]model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Playlist{}
	for _, p := range r.playlists {
		if p.UserID == userID {
			out = append(out, *clonePlaylist(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Playlists) Update(_ context.Context, id primitive.ObjectID, name, thumbnail *string) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, notFound("playlist")
	}
	if name != nil {
		if r.nameTaken(p.UserID, *name, id) {
			return nil, conflict("playlist name")
		}
		p.Name = *name
	}
	if thumbnail != nil {
		p.Thumbnail = *thumbnail
	}
	p.UpdatedAt = time.Now().UTC()
	return clonePlaylist(p), nil
}

func (r *Playlists) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.playlists[id]; !ok {
		return notFound("playlist")
	}
	delete(r.playlists, id)
	return nil
}

func (r *Playlists) AddVideo(_ context.Context, id primitive.ObjectID, videoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return false, notFound("playlist")
	}
	if p.Contains(videoID) {
		return false, nil
	}
	p.Videos = append(p.Videos, videoID)
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *Playlists) RemoveVideo(_ context.Context, id primitive.ObjectID, videoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return false, notFound("playlist")
	}
	for i, v := range p.Videos {
		if v == videoID {
			p.Videos = append(p.Videos[:i], p.Videos[i+1:]...)
			p.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
	"vidhub-go/internal/model"
)

const maxPlaylistName = 100

type PlaylistService struct {
	playlistRepo PlaylistRepo
	videoRepo    VideoRepo
	now          func() time.Time
}

func NewPlaylistService(playlistRepo PlaylistRepo, videoRepo VideoRepo) *PlaylistService {
	return &PlaylistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func normalizePlaylistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxPlaylistName {
		return "", ErrPlaylistNameInvalid
	}
	return name, nil
}

func toPlaylistInfo(p *model.Playlist) *dto.PlaylistInfo {
	videos := p.Videos
	if videos == nil {
		videos = []string{}
	}
	return &dto.PlaylistInfo{
		ID:         p.ID.Hex(),
		Name:       p.Name,
		Thumbnail:  p.Thumbnail,
		Videos:     videos,
		VideoCount: len(videos),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func conflictAs(err error, target error) error {
	if errors.Is(err, errs.ErrConflict) {
		return target
	}
	return err
}

// Create 创建播放列表，同一用户下名称唯一
func (s *PlaylistService) Create(ctx context.Context, userID int64, req *dto.PlaylistCreateRequest) (*dto.PlaylistInfo, error) {
	name, err := normalizePlaylistName(req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Playlist{
		UserID:    userID,
		Name:      name,
		Videos:    []string{},
		Thumbnail: req.Thumbnail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.playlistRepo.Create(ctx, p); err != nil {
		return nil, conflictAs(err, ErrPlaylistNameTaken)
	}
	return toPlaylistInfo(p), nil
}

// ListMine 当前用户的播放列表，按创建时间倒序
func (s *PlaylistService) ListMine(ctx context.Context, userID int64) ([]dto.PlaylistInfo, error) {
	playlists, err := s.playlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PlaylistInfo, 0, len(playlists))
	for i := range playlists {
		items = append(items, *toPlaylistInfo(&playlists[i]))
	}
	return items, nil
}

// owned 加载播放列表并校验归属
func (s *PlaylistService) owned(ctx context.Context, userID int64, id string) (*model.Playlist, error) {
	p, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPlaylistNoPermission
	}
	return p, nil
}

func notFoundAs(err error, target error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return target
	}
	return err
}

// Get 播放列表详情，按加入顺序附带视频信息（已删除的视频跳过）
func (s *PlaylistService) Get(ctx context.Context, userID int64, id string) (*dto.PlaylistInfo, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	info := toPlaylistInfo(p)
	info.Items = []dto.VideoInfo{}
	if len(p.Videos) == 0 {
		return info, nil
	}

	videos, err := s.videoRepo.GetByIDs(ctx, p.Videos)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}
	for _, vid := range p.Videos {
		if v, ok := byID[vid]; ok {
			info.Items = append(info.Items, *toVideoInfo(v))
		}
	}
	return info, nil
}

// Update 重命名或修改封面
func (s *PlaylistService) Update(ctx context.Context, userID int64, id string, req *dto.PlaylistUpdateRequest) (*dto.PlaylistInfo, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name == nil && req.Thumbnail == nil {
		return nil, ErrNoFieldsToUpdate
	}

	var name *string
	if req.Name != nil {
		n, err := normalizePlaylistName(*req.Name)
		if err != nil {
			return nil, err
		}
		name = &n
	}

	updated, err := s.playlistRepo.Update(ctx, p.ID, name, req.Thumbnail)
	if err != nil {
		return nil, notFoundAs(conflictAs(err, ErrPlaylistNameTaken), ErrPlaylistNotFound)
	}
	return toPlaylistInfo(updated), nil
}

// Delete 删除播放列表
func (s *PlaylistService) Delete(ctx context.Context, userID int64, id string) error {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return notFoundAs(s.playlistRepo.Delete(ctx, p.ID), ErrPlaylistNotFound)
}

// AddVideo 添加视频，视频必须存在且不在列表中
func (s *PlaylistService) AddVideo(ctx context.Context, userID int64, id, videoRef string) (*dto.PlaylistInfo, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	video, err := resolveVideo(ctx, s.videoRepo, videoRef)
	if err != nil {
		return nil, err
	}

	added, err := s.playlistRepo.AddVideo(ctx, p.ID, video.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrPlaylistNotFound)
	}
	if !added {
		return nil, ErrVideoAlreadyInPlaylist
	}
	return s.reload(ctx, userID, id)
}

// RemoveVideo 从列表中移除视频
func (s *PlaylistService) RemoveVideo(ctx context.Context, userID int64, id, videoID string) (*dto.PlaylistInfo, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	removed, err := s.playlistRepo.RemoveVideo(ctx, p.ID, videoID)
	if err != nil {
		return nil, notFoundAs(err, ErrPlaylistNotFound)
	}
	if !removed {
		return nil, ErrVideoNotInPlaylist
	}
	return s.reload(ctx, userID, id)
}

func (s *PlaylistService) reload(ctx context.Context, userID int64, id string) (*dto.PlaylistInfo, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toPlaylistInfo(p), nil
}

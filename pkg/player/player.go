// Package player 客户端播放量判定：播放位置越过阈值后每个会话只记录一次。
package player

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

var (
	clockPattern = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2})$`)
	hourPattern  = regexp.MustCompile(`(\d+)\s*h`)
	minPattern   = regexp.MustCompile(`(\d+)\s*m`)
	secPattern   = regexp.MustCompile(`(\d+)\s*s`)
)

// ParseDuration 把时长文本解析为秒数
// 优先匹配 H:MM:SS / MM:SS，其次 "1h 20m"、"45m"、"30s" 这类文本，都不匹配返回 0
func ParseDuration(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		return h*3600 + min*60 + sec
	}

	total := 0
	matched := false
	for _, p := range []struct {
		re   *regexp.Regexp
		unit int
	}{{hourPattern, 3600}, {minPattern, 60}, {secPattern, 1}} {
		if m := p.re.FindStringSubmatch(s); m != nil {
			n, _ := strconv.Atoi(m[1])
			total += n * p.unit
			matched = true
		}
	}
	if !matched {
		return 0
	}
	return total
}

// Threshold 记一次播放需要达到的播放位置（秒）
func Threshold(totalSeconds int) float64 {
	if totalSeconds < 15 {
		return 3
	}
	return math.Min(10, 0.2*float64(totalSeconds))
}

// Recorder 上报一次播放
type Recorder func(ctx context.Context, videoID string) error

// Session 一次播放器挂载对应一个会话
type Session struct {
	videoID   string
	threshold float64
	record    Recorder

	mu       sync.Mutex
	playing  bool
	started  bool
	recorded atomic.Bool
}

// NewSession duration 为视频的时长文本
func NewSession(videoID, duration string, record Recorder) *Session {
	return &Session{
		videoID:   videoID,
		threshold: Threshold(ParseDuration(duration)),
		record:    record,
	}
}

func (s *Session) Threshold() float64 { return s.threshold }

// Recorded 本会话是否已经上报过
func (s *Session) Recorded() bool { return s.recorded.Load() }

// Play 开始或恢复播放
func (s *Session) Play() {
	s.mu.Lock()
	s.playing = true
	s.started = true
	s.mu.Unlock()
}

// Pause 暂停不会触发上报
func (s *Session) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

// Progress 播放进度回调，position 为当前播放位置（秒）
// 位置首次达到阈值时上报一次，返回本次调用是否触发了上报。上报失败只记日志，视为丢失一次播放
func (s *Session) Progress(ctx context.Context, position float64) bool {
	s.mu.Lock()
	playing := s.playing && s.started
	s.mu.Unlock()

	if !playing || position < s.threshold {
		return false
	}
	if !s.recorded.CompareAndSwap(false, true) {
		return false
	}

	if err := s.record(ctx, s.videoID); err != nil {
		logger.Warn("Record view failed", zap.String("video_id", s.videoID), zap.Error(err))
	}
	return true
}

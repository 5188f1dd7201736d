// Package client vidhub API 的 Go 客户端。
// 429、5xx 和网络错误按指数退避重试，其余错误直接返回。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vidhub-go/internal/api/dto"

	"github.com/cenkalti/backoff/v4"
)

// APIError 服务端返回的错误
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Type, e.Message)
}

func (e *APIError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsNotFound 目标不存在
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

type Option func(*Client)

// WithToken 设置 Bearer Token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry 设置退避的初始间隔与最多重试次数
func WithRetry(initial time.Duration, maxRetries uint64) Option {
	return func(c *Client) {
		c.retryInitial = initial
		c.maxRetries = maxRetries
	}
}

type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	retryInitial time.Duration
	maxRetries   uint64
}

// New baseURL 形如 http://127.0.0.1:8000/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				MaxIdleConns:    20,
				IdleConnTimeout: 90 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
		retryInitial: 200 * time.Millisecond,
		maxRetries:   3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// do 发送请求并把完整响应体解码到 out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	var raw []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			apiErr := &APIError{Status: resp.StatusCode, Type: http.StatusText(resp.StatusCode)}
			var env envelope
			if json.Unmarshal(data, &env) == nil && env.Error != nil {
				apiErr.Type = env.Error.Type
				apiErr.Message = env.Error.Message
			}
			if apiErr.retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		raw = data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// doData 只解码 data 字段
func (c *Client) doData(ctx context.Context, method, path string, body, out interface{}) error {
	var env envelope
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func videoPath(id string, suffix string) string {
	return "/videos/" + url.PathEscape(id) + suffix
}

// RecordView 播放量 +1，返回展示格式的播放量
func (c *Client) RecordView(ctx context.Context, videoID string) (string, error) {
	var res dto.ViewResult
	if err := c.doData(ctx, http.MethodPatch, videoPath(videoID, "/view"), nil, &res); err != nil {
		return "", err
	}
	return res.Views, nil
}

func (c *Client) ToggleLike(ctx context.Context, videoID string) (*dto.LikeResult, error) {
	var res dto.LikeResult
	if err := c.doData(ctx, http.MethodPost, videoPath(videoID, "/like"), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) LikeStatus(ctx context.Context, videoID string) (*dto.LikeStatus, error) {
	var res dto.LikeStatus
	if err := c.doData(ctx, http.MethodGet, videoPath(videoID, "/likes"), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListComments cursor 为空时从最新开始
func (c *Client) ListComments(ctx context.Context, videoID, cursor string, limit int) (*dto.CommentPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := videoPath(videoID, "/comments")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res struct {
		Data       []dto.CommentInfo `json:"data"`
		NextCursor *string           `json:"nextCursor"`
		HasMore    bool              `json:"hasMore"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &dto.CommentPage{Items: res.Data, NextCursor: res.NextCursor, HasMore: res.HasMore}, nil
}

func (c *Client) AddComment(ctx context.Context, videoID, text string) (*dto.CommentInfo, error) {
	var res dto.CommentInfo
	if err := c.doData(ctx, http.MethodPost, videoPath(videoID, "/comments"), dto.CommentCreateRequest{Text: text}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Search 搜索视频
func (c *Client) Search(ctx context.Context, req dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	q := url.Values{}
	for k, v := range map[string]string{"q": req.Q, "category": req.Category, "year": req.Year, "sort": req.Sort} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	var res struct {
		Data       []dto.VideoInfo      `json:"data"`
		Pagination dto.SearchPagination `json:"pagination"`
		Filters    dto.AppliedFilters   `json:"filters"`
	}
	if err := c.do(ctx, http.MethodGet, "/videos/search?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return &dto.SearchVideoData{Videos: res.Data, Pagination: res.Pagination, Filters: res.Filters}, nil
}

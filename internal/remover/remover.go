package remover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"removebg/internal/config"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL = "https://api.remove.bg/v1.0/removebg"
	DefaultSize   = "auto"

	apiKeyHeader = "X-Api-Key"
	// 错误响应体只读取一小段用于日志
	errorBodyLimit = 512
)

// ErrRemoteProcessing 远程去背景调用失败（网络错误或非 2xx 状态）。
// 额度耗尽、图片无效、鉴权失败等情况不做区分。
var ErrRemoteProcessing = errors.New("remote background removal failed")

// BackgroundRemover 根据图片 URL 返回去除背景后的图片字节。
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) ([]byte, error)
}

// Client 是 remove.bg HTTP API 的适配器。
type Client struct {
	apiKey     string
	endpoint   string
	size       string
	httpClient *http.Client
}

// Option 调整 Client 的可选参数。
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoint 替换 API 地址。
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("remove.bg api key is not configured")
	}
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultAPIURL,
		size:     DefaultSize,
		// 默认不设超时
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig 根据配置创建客户端。
func NewClientFromConfig(cfg config.Config) (*Client, error) {
	c, err := NewClient(cfg.RemoveBgAPIKey,
		WithEndpoint(cfg.RemoveBgAPIURL),
		WithHTTPClient(&http.Client{Timeout: cfg.RemoveBgTimeout}),
	)
	if err != nil {
		return nil, err
	}
	if size := strings.TrimSpace(cfg.RemoveBgSize); size != "" {
		c.size = size
	}
	return c, nil
}

// RemoveBackground 发送图片 URL（而不是图片本身），由远端自行下载。
func (c *Client) RemoveBackground(ctx context.Context, imageURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client not initialised", ErrRemoteProcessing)
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("%w: image url is empty", ErrRemoteProcessing)
	}

	log := logrus.WithFields(logrus.Fields{
		"provider":  "removebg",
		"image_url": imageURL,
	})
	if ctx != nil {
		log = log.WithContext(ctx)
	}

	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("size", c.size)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRemoteProcessing, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("removebg_request_failed")
		return nil, fmt.Errorf("%w: %v", ErrRemoteProcessing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		log.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"body":     strings.TrimSpace(string(snippet)),
			"duration": time.Since(start).String(),
		}).Warn("removebg_non_success_status")
		return nil, fmt.Errorf("%w: http %d", ErrRemoteProcessing, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRemoteProcessing, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrRemoteProcessing)
	}

	log.WithFields(logrus.Fields{
		"bytes":    len(data),
		"duration": time.Since(start).String(),
	}).Info("removebg_completed")
	return data, nil
}

var _ BackgroundRemover = (*Client)(nil)

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mediastash/internal/dashboard"

	"github.com/go-resty/resty/v2"
)

// APIError 是服务端在响应体里报告的业务错误。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// Client 访问 mediastash API，实现 dashboard.Fetcher。
// 会话（令牌与用户名）在构造时注入，运行期只读。
type Client struct {
	http     *resty.Client
	username string
}

// New 创建带固定鉴权头的 API 客户端。
func New(baseURL, token, username string) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetHeader("Authorization", "Bearer "+token)
	httpClient.SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		username: username,
	}
}

// Username 返回注入的会话用户名。
func (c *Client) Username() string {
	return c.username
}

// Files 拉取当前用户的完整文件列表。
func (c *Client) Files(ctx context.Context) ([]dashboard.FileRecord, error) {
	var files []dashboard.FileRecord

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&files).
		Get("/api/user/files")
	if err != nil {
		return nil, fmt.Errorf("fetch files: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiMessage(resp)}
	}

	return files, nil
}

// Recent 拉取当前用户最近上传的媒体文件。
func (c *Client) Recent(ctx context.Context) ([]dashboard.FileRecord, error) {
	var files []dashboard.FileRecord

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("filter", "media").
		SetResult(&files).
		Get("/api/user/recent")
	if err != nil {
		return nil, fmt.Errorf("fetch recent: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiMessage(resp)}
	}

	return files, nil
}

// Stats 拉取全局使用统计快照。
func (c *Client) Stats(ctx context.Context) (*dashboard.StatsSummary, error) {
	var summary dashboard.StatsSummary

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&summary).
		Get("/api/stats")
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiMessage(resp)}
	}

	return &summary, nil
}

type deleteResult struct {
	Error string `json:"error"`
}

// Delete 删除指定文件。服务端通过 error 字段报告业务失败，
// 字段为空才视为删除成功。
func (c *Client) Delete(ctx context.Context, id string) error {
	var result deleteResult

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"id": id}).
		SetResult(&result).
		SetError(&result).
		Delete("/api/user/files")
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.Error != "" {
		return &APIError{StatusCode: resp.StatusCode(), Message: result.Error}
	}
	if resp.StatusCode() != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode()}
	}

	return nil
}

// apiMessage 尽力从错误响应体中取出 error 字段。
func apiMessage(resp *resty.Response) string {
	if resp == nil {
		return ""
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return ""
	}
	return envelope.Error
}

package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rishbCLN/civic-issue-reporting/internal/config"
)

const pinataAPIBase = "https://api.pinata.cloud"

// Uploader 内容寻址存储上传接口
type Uploader interface {
	PinJSON(ctx context.Context, data interface{}) (string, error)
	PinFile(ctx context.Context, filename string, content io.Reader) (string, error)
	GatewayURL(hash string) string
}

// Client Pinata客户端
type Client struct {
	jwt     string
	gateway string
	http    *http.Client
}

// NewClient 创建Pinata客户端
func NewClient(cfg config.PinataConfig) *Client {
	return &Client{
		jwt:     cfg.JWT,
		gateway: cfg.Gateway,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// pinResponse Pinata固定响应
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinJSON 上传JSON文档，返回内容哈希
func (c *Client) PinJSON(ctx context.Context, data interface{}) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{"pinataContent": data})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		pinataAPIBase+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	return c.doPin(req)
}

// PinFile 上传文件，返回内容哈希
func (c *Client) PinFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		pinataAPIBase+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	return c.doPin(req)
}

// doPin 执行上传请求并解析内容哈希
func (c *Client) doPin(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinata returned status %d: %s", resp.StatusCode, string(body))
	}

	var result pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode pinata response: %w", err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pinata response missing IpfsHash")
	}

	return result.IpfsHash, nil
}

// GatewayURL 将内容哈希映射为可访问的网关URL
func (c *Client) GatewayURL(hash string) string {
	hash = strings.TrimPrefix(hash, "ipfs://")
	return fmt.Sprintf("https://%s/ipfs/%s", c.gateway, hash)
}

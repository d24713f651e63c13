package oss

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/skill_exchange_server/config"
)

const avatarPrefix = "avatars/"

// Client 头像对象存储
type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// AvatarKey 头像对象路径
func AvatarKey(userID int64, ext string, at time.Time) string {
	return fmt.Sprintf("%s%d/%d%s", avatarPrefix, userID, at.UnixNano(), strings.ToLower(ext))
}

// UploadAvatar 上传用户头像，返回可访问的 URL
func (c *Client) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	objectKey := AvatarKey(userID, ext, time.Now())

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data),
		oss.ContentType(ContentType(ext)),
		oss.CacheControl("public, max-age=31536000"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// DeleteAvatar 删除旧头像，非本桶头像直接忽略
func (c *Client) DeleteAvatar(url string) error {
	key := c.ExtractObjectKey(url)
	if !strings.HasPrefix(key, avatarPrefix) {
		return nil
	}
	if err := c.bucket.DeleteObject(key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// ContentType 根据扩展名获取 Content-Type
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ExtractObjectKey 从 URL 中提取 object key
func (c *Client) ExtractObjectKey(url string) string {
	if c.cdnDomain != "" {
		prefix := fmt.Sprintf("https://%s/", c.cdnDomain)
		if strings.HasPrefix(url, prefix) {
			return url[len(prefix):]
		}
	}

	// https://bucket-name.endpoint/path/to/object
	parts := strings.SplitN(url, "/", 4)
	if len(parts) == 4 && strings.HasPrefix(parts[2], c.bucketName+".") {
		return parts[3]
	}

	return ""
}

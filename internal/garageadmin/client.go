// Package garageadmin is a typed, bearer-token-authenticated HTTP client for
// the subset of the Garage admin API the reconcilers in internal/controller
// call.
package garageadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const maxResponseSize = 10 * 1024 * 1024
const maxErrorMessageLen = 500

// Client is a client for the Garage admin API.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// NewClient creates a client talking to the admin API rooted at baseURL,
// authenticating every call with adminToken as a bearer token.
func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		params := url.Values{}
		for k, v := range query {
			params.Set(k, v)
		}
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.adminToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: Transport, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &APIError{Kind: Transport, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > maxErrorMessageLen {
			msg = msg[:maxErrorMessageLen] + "... (truncated)"
		}
		return newAPIError(resp.StatusCode, msg)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Kind: Protocol, StatusCode: resp.StatusCode, Message: err.Error()}
	}
	return nil
}

// FreeSpace describes available/total bytes on a node's meta or data
// partition.
type FreeSpace struct {
	Available uint64 `json:"available"`
	Total     uint64 `json:"total"`
}

// NodeInfo describes one node as reported by GetStatus.
type NodeInfo struct {
	ID                string     `json:"id"`
	Address           string     `json:"addr,omitempty"`
	IsUp              bool       `json:"isUp"`
	DataPartition     *FreeSpace `json:"dataPartition,omitempty"`
	MetadataPartition *FreeSpace `json:"metadataPartition,omitempty"`
}

// ClusterStatus is the response of GetStatus.
type ClusterStatus struct {
	LayoutVersion int64      `json:"layoutVersion"`
	Nodes         []NodeInfo `json:"nodes"`
}

// GetStatus returns the current cluster status: its nodes and layout
// version.
func (c *Client) GetStatus(ctx context.Context) (*ClusterStatus, error) {
	var status ClusterStatus
	if err := c.doRequest(ctx, http.MethodGet, "/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// LayoutAssignment assigns a node to a zone with a storage capacity, as
// submitted to ApplyLayout.
type LayoutAssignment struct {
	ID       string   `json:"id"`
	Zone     string   `json:"zone"`
	Capacity *uint64  `json:"capacity,omitempty"`
	Tags     []string `json:"tags"`
}

type applyLayoutRequest struct {
	Assignments []LayoutAssignment `json:"assignments"`
}

type applyLayoutResponse struct {
	Version int64 `json:"version"`
}

// ApplyLayout submits a new cluster layout built from assignments and
// returns the resulting layout version.
func (c *Client) ApplyLayout(ctx context.Context, assignments []LayoutAssignment) (int64, error) {
	var resp applyLayoutResponse
	if err := c.doRequest(ctx, http.MethodPost, "/layout", nil, applyLayoutRequest{Assignments: assignments}, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// ClusterCapacity is the aggregate capacity reported by GetCluster.
type ClusterCapacity struct {
	TotalBytes int64 `json:"totalBytes"`
}

// GetCluster returns the cluster's aggregate capacity.
func (c *Client) GetCluster(ctx context.Context) (*ClusterCapacity, error) {
	var capacity ClusterCapacity
	if err := c.doRequest(ctx, http.MethodGet, "/cluster", nil, nil, &capacity); err != nil {
		return nil, err
	}
	return &capacity, nil
}

// BucketKeyPerms is the (read, write, owner) permission triple a key holds
// on a bucket.
type BucketKeyPerms struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Owner bool `json:"owner"`
}

// BucketKeyInfo is one of a bucket's granted keys.
type BucketKeyInfo struct {
	AccessKeyID string         `json:"accessKeyId"`
	Permissions BucketKeyPerms `json:"permissions"`
}

// BucketQuotas mirrors api/v1alpha1.BucketQuotas in wire form.
type BucketQuotas struct {
	MaxSize        *uint64 `json:"maxSize,omitempty"`
	MaxObjectCount *uint64 `json:"maxObjectCount,omitempty"`
}

// Bucket is a bucket descriptor as returned by GetBucket.
type Bucket struct {
	ID            string          `json:"id"`
	GlobalAliases []string        `json:"globalAliases"`
	Keys          []BucketKeyInfo `json:"keys"`
	Quotas        BucketQuotas    `json:"quotas"`
}

type createBucketRequest struct {
	GlobalAlias string `json:"globalAlias"`
}

type createBucketResponse struct {
	ID string `json:"id"`
}

// CreateBucket creates a bucket aliased globally as globalAlias and returns
// its ID.
func (c *Client) CreateBucket(ctx context.Context, globalAlias string) (string, error) {
	var resp createBucketResponse
	if err := c.doRequest(ctx, http.MethodPost, "/bucket", nil, createBucketRequest{GlobalAlias: globalAlias}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetBucket fetches a bucket descriptor by ID or by global alias; exactly
// one of id/globalAlias must be non-empty.
func (c *Client) GetBucket(ctx context.Context, id, globalAlias string) (*Bucket, error) {
	query := map[string]string{}
	if id != "" {
		query["id"] = id
	} else {
		query["globalAlias"] = globalAlias
	}
	var bucket Bucket
	if err := c.doRequest(ctx, http.MethodGet, "/bucket", query, nil, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

type updateBucketQuotasRequest struct {
	Quotas BucketQuotas `json:"quotas"`
}

// UpdateBucketQuotas sets a bucket's quotas.
func (c *Client) UpdateBucketQuotas(ctx context.Context, id string, quotas BucketQuotas) error {
	return c.doRequest(ctx, http.MethodPut, "/bucket", map[string]string{"id": id}, updateBucketQuotasRequest{Quotas: quotas}, nil)
}

// DeleteBucket removes a bucket by ID.
func (c *Client) DeleteBucket(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/bucket", map[string]string{"id": id}, nil, nil)
}

type createKeyRequest struct {
	Name string `json:"name"`
}

// CreateKey is the one-time response of CreateKey: the secret is returned
// only here and never again.
type CreateKey struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// CreateKey provisions a new access key named name.
func (c *Client) CreateKey(ctx context.Context, name string) (*CreateKey, error) {
	var resp CreateKey
	if err := c.doRequest(ctx, http.MethodPost, "/key", nil, createKeyRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteKey removes an access key by ID.
func (c *Client) DeleteKey(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/key", map[string]string{"id": id}, nil, nil)
}

type bucketKeyPermissionRequest struct {
	BucketID    string         `json:"bucketId"`
	AccessKeyID string         `json:"accessKeyId"`
	Permissions BucketKeyPerms `json:"permissions"`
}

// AllowKey grants the given permission flags to keyID on bucketID.
func (c *Client) AllowKey(ctx context.Context, bucketID, keyID string, flags BucketKeyPerms) error {
	return c.doRequest(ctx, http.MethodPost, "/bucket/allow", nil, bucketKeyPermissionRequest{
		BucketID:    bucketID,
		AccessKeyID: keyID,
		Permissions: flags,
	}, nil)
}

// DenyKey revokes the given permission flags from keyID on bucketID.
func (c *Client) DenyKey(ctx context.Context, bucketID, keyID string, flags BucketKeyPerms) error {
	return c.doRequest(ctx, http.MethodPost, "/bucket/deny", nil, bucketKeyPermissionRequest{
		BucketID:    bucketID,
		AccessKeyID: keyID,
		Permissions: flags,
	}, nil)
}

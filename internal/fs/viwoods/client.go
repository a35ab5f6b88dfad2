package viwoods

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultPort is the fixed port of the tablet's file-transfer service.
	DefaultPort = 8090

	listPath     = "/getChildFolderList"
	packagePath  = "/packageFile"
	downloadPath = "/download"

	// The service packages everything as .note archives.
	fileFormatNote = "note"
)

// Options holds the client parameters.
type Options struct {
	Host string
	Port int
	// Timeout bounds listing and packaging calls. Downloads stream
	// without a total deadline.
	Timeout time.Duration
}

// Client speaks the tablet's HTTP API.
type Client struct {
	opts       *Options
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the tablet at opts.Host.
func NewClient(opts *Options) *Client {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		opts:    opts,
		baseURL: "http://" + net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		httpClient: &http.Client{
			// No overall timeout: downloads may stream for minutes.
			// The dialer bounds how long an unreachable tablet stalls us.
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// BaseURL returns the service address, for logging.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListFolder lists the children of one folder. Root folders are listed
// with appType "root", folderName "Home" and an empty folderID.
func (c *Client) ListFolder(ctx context.Context, appType, folderName, folderID string) ([]Entry, error) {
	params := url.Values{}
	params.Set("appType", appType)
	params.Set("folderName", folderName)
	params.Set("language", "en")
	if folderID != "" {
		params.Set("folderId", folderID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := c.get(ctx, listPath, params)
	if err != nil {
		return nil, err
	}

	var resp ListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api error: %d %s", resp.Code, resp.Msg)
	}

	return resp.Data, nil
}

// PackageFile asks the tablet to package one note for download and
// returns the packaged file's path on the tablet.
// noteID comes from the listing entry; it is not the file name.
func (c *Client) PackageFile(ctx context.Context, appType, noteID, folderID, fileName string) (string, error) {
	params := url.Values{}
	params.Set("appType", appType)
	params.Set("fileUrl", noteID)
	params.Set("fileFormat", fileFormatNote)
	params.Set("fileName", fileName)
	params.Set("folderId", folderID)
	params.Set("isFolder", "false")
	params.Set("childFileFormat", fileFormatNote)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := c.get(ctx, packagePath, params)
	if err != nil {
		return "", err
	}

	var resp PackageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode package response: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("api error: %d %s", resp.Code, resp.Msg)
	}
	if resp.Data == "" {
		return "", fmt.Errorf("empty package path for %s", fileName)
	}

	return resp.Data, nil
}

// Download opens the content stream of a packaged file.
// The caller must close the returned body.
func (c *Client) Download(ctx context.Context, filePath string) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("filePath", filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+downloadPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// get issues a GET and returns the whole response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

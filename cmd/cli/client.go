package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yourusername/vidfetch-go/api/handlers"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// apiClient talks to a running vidfetch server
type apiClient struct {
	baseURL string
	http    *http.Client
}

// downloads block until the engine finishes, so no client timeout
func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{}}
}

type formatsResponse struct {
	URL      string                    `json:"url"`
	Platform string                    `json:"platform"`
	Count    int                       `json:"count"`
	Formats  []handlers.FormatResponse `json:"formats"`
}

type logsResponse struct {
	Category string            `json:"category"`
	Date     string            `json:"date"`
	Count    int               `json:"count"`
	Entries  []logger.LogEntry `json:"entries"`
}

// apiError is a non-2xx response with the server's detail message
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

func (c *apiClient) download(videoURL, format string) (*handlers.DownloadVideoResponse, error) {
	data, err := json.Marshal(handlers.DownloadVideoRequest{URL: videoURL, Format: format})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.baseURL+"/download/", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out handlers.DownloadVideoResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) formats(videoURL string) (*formatsResponse, error) {
	resp, err := c.http.Get(c.baseURL + "/formats?url=" + url.QueryEscape(videoURL))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out formatsResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// fetchVideo streams /video/{name} into w and returns the bytes copied
func (c *apiClient) fetchVideo(name string, w io.Writer) (int64, error) {
	resp, err := c.http.Get(c.baseURL + "/video/" + url.PathEscape(name))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, readAPIError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *apiClient) logs(category, date, query string, limit int) (*logsResponse, error) {
	params := url.Values{}
	if date != "" {
		params.Set("date", date)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/logs/" + url.PathEscape(category)
	if query != "" {
		path += "/search"
		params.Set("q", query)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out logsResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeResponse(resp *http.Response, v any) error {
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	detail := string(bytes.TrimSpace(body))
	if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
		detail = payload.Detail
		if payload.Error != "" {
			detail += ": " + payload.Error
		}
	}
	return &apiError{Status: resp.StatusCode, Detail: detail}
}

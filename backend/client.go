// Package backend talks to the annotation REST API: video setup, frame
// cursor, frame images, rectangle saves and the image gallery.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/frame-annotator/domain/annotation"
)

const maxImageBytes = 64 << 20

// Setup is the answer to a video selection.
type Setup struct {
	TotalFrames int
	Rectangles  annotation.FrameSet
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type setupResponse struct {
	apiResponse
	TotalFrames int                               `json:"total_frames"`
	Rectangles  map[string]annotation.Rectangles `json:"rectangles,omitempty"`
}

type saveRequest struct {
	Frame      int                   `json:"frame"`
	Rectangles annotation.Rectangles `json:"rectangles"`
}

type saveResponse struct {
	apiResponse
	Results map[string]bool `json:"results,omitempty"`
}

// Client is a typed client for the backend endpoints. It is safe for
// concurrent use; the backend's frame cursor is not, see Frames.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// NewClient parses baseURL and returns a client whose requests time out after
// timeout (zero means no client-side deadline).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}, logger: logger}, nil
}

// SetupVideo asks the backend to open name and returns its frame count and
// the annotations already stored for it.
func (c *Client) SetupVideo(ctx context.Context, name string) (Setup, error) {
	var resp setupResponse
	q := url.Values{"name": {name}}
	if err := c.getJSON(ctx, "/api/setup_video", q, &resp); err != nil {
		return Setup{}, err
	}
	if !resp.Success {
		return Setup{}, loadFailure("setup "+strconv.Quote(name), resp.Error)
	}
	set, err := annotation.ParseFrameSet(resp.Rectangles)
	if err != nil {
		return Setup{}, fmt.Errorf("setup %q: %w: %v", name, annotation.ErrLoadFailure, err)
	}
	return Setup{TotalFrames: resp.TotalFrames, Rectangles: set}, nil
}

// SetFrameNumber moves the backend's frame cursor.
func (c *Client) SetFrameNumber(ctx context.Context, frame int) error {
	var resp apiResponse
	q := url.Values{"frame": {strconv.Itoa(frame)}}
	if err := c.getJSON(ctx, "/api/set_frame_number", q, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return loadFailure(fmt.Sprintf("set frame %d", frame), resp.Error)
	}
	return nil
}

// CurrentImage returns the encoded image at the backend's frame cursor.
func (c *Client) CurrentImage(ctx context.Context) ([]byte, error) {
	return c.getBytes(ctx, "/api/get_img")
}

// ListImages returns the gallery's image file names in backend order.
func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/get_images", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Image returns the encoded gallery image called name.
func (c *Client) Image(ctx context.Context, name string) ([]byte, error) {
	return c.getBytes(ctx, "/images/"+url.PathEscape(name))
}

// SaveRectangles sends one frame's full rectangle set and returns the
// per-id outcome. A backend that only answers with an aggregate flag has that
// flag applied to every id.
func (c *Client) SaveRectangles(ctx context.Context, frame int, rects annotation.Rectangles) (map[string]bool, error) {
	body, err := json.Marshal(saveRequest{Frame: frame, Rectangles: rects})
	if err != nil {
		return nil, err
	}
	var resp saveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/save_rectangle", nil, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success && resp.Error != "" && c.logger != nil {
		c.logger.Warn("save rejected", "frame", frame, "error", resp.Error)
	}
	results := make(map[string]bool, len(rects))
	for id := range rects {
		ok, reported := resp.Results[id]
		if !reported {
			ok = resp.Success
		}
		results[id] = ok
	}
	return results, nil
}

var _ annotation.Saver = (*Client)(nil)

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	resp, err := c.do(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: malformed response: %v", annotation.ErrNetwork, method, path, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", annotation.ErrNetwork, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("GET %s: %w: empty image", path, annotation.ErrLoadFailure)
	}
	return data, nil
}

// do issues the request and maps transport failures and non-2xx statuses to
// annotation.ErrNetwork. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = q.Encode()
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", annotation.ErrNetwork, method, path, err)
	}
	if c.logger != nil {
		c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", annotation.ErrNetwork, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}

func loadFailure(op, msg string) error {
	if msg == "" {
		return fmt.Errorf("%s: %w", op, annotation.ErrLoadFailure)
	}
	return fmt.Errorf("%s: %w: %s", op, annotation.ErrLoadFailure, msg)
}

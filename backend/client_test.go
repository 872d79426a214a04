package backend

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c, err := NewClient(ts.URL+"/", time.Second, discardLogger)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	if _, err := NewClient("ftp://example.test", time.Second, nil); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestSetupVideo_ParsesFramesAndRectangles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/setup_video" || r.URL.Query().Get("name") != "a.mp4" {
			t.Errorf("unexpected request %s", r.URL)
		}
		io.WriteString(w, `{"success":true,"total_frames":10,"rectangles":{"3":{"r1":{"xywhn":[0.3,0.3,0.4,0.4]}}}}`)
	})
	setup, err := c.SetupVideo(t.Context(), "a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if setup.TotalFrames != 10 {
		t.Fatalf("total frames %d", setup.TotalFrames)
	}
	r, ok := setup.Rectangles[3]["r1"]
	if !ok || !geom.Pt(r.Size.W, r.Size.H).Eq(geom.Pt(0.4, 0.4), 1e-9) {
		t.Fatalf("frame 3 rectangle missing or wrong: %+v", setup.Rectangles)
	}
}

func TestSetupVideo_FailureIsLoadFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"invalid video file"}`)
	})
	_, err := c.SetupVideo(t.Context(), "x")
	if !errors.Is(err, annotation.ErrLoadFailure) {
		t.Fatalf("expected ErrLoadFailure, got %v", err)
	}
}

func TestClient_NonSuccessStatusIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if err := c.SetFrameNumber(t.Context(), 1); !errors.Is(err, annotation.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if _, err := c.CurrentImage(t.Context()); !errors.Is(err, annotation.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_MalformedJSONIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":`)
	})
	if _, err := c.ListImages(t.Context()); !errors.Is(err, annotation.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_UnreachableIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	c, _ := NewClient(url, time.Second, discardLogger)
	if err := c.SetFrameNumber(t.Context(), 0); !errors.Is(err, annotation.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestSaveRectangles_PerIDResults(t *testing.T) {
	var got saveRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		io.WriteString(w, `{"success":false,"results":{"a":true,"b":false}}`)
	})
	rects := annotation.Rectangles{
		"a": {Center: geom.Pt(0.5, 0.5), Size: geom.Sz(0.1, 0.1)},
		"b": {Center: geom.Pt(0.2, 0.2), Size: geom.Sz(0.1, 0.1)},
		"c": {Center: geom.Pt(0.8, 0.8), Size: geom.Sz(0.1, 0.1)},
	}
	results, err := c.SaveRectangles(t.Context(), 4, rects)
	if err != nil {
		t.Fatal(err)
	}
	if got.Frame != 4 || len(got.Rectangles) != 3 {
		t.Fatalf("request body not sent whole: %+v", got)
	}
	// "c" is not reported and inherits the aggregate flag.
	if !results["a"] || results["b"] || results["c"] {
		t.Fatalf("unexpected results %v", results)
	}
}

func TestSaveRectangles_AggregateOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	})
	rects := annotation.Rectangles{"a": {Center: geom.Pt(0.5, 0.5), Size: geom.Sz(0.1, 0.1)}}
	res, err := annotation.Save(t.Context(), c, 0, rects)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Saved) != 1 || len(res.Failed) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestImage_EscapesName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/images/my%20shot.png" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		w.Write([]byte{1, 2, 3})
	})
	data, err := c.Image(t.Context(), "my shot.png")
	if err != nil || len(data) != 3 {
		t.Fatalf("image fetch failed: %v %v", data, err)
	}
}

// Package devserver is a development backend implementing the annotation
// REST API over a directory of image-sequence datasets. Annotations are kept
// in memory for the lifetime of the process.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soocke/frame-annotator/domain/annotation"
)

// Server serves one data directory. The frame cursor is global, as in the
// API contract: the last set_frame_number decides what get_img returns.
type Server struct {
	cfg    *Config
	logger *slog.Logger
	engine *gin.Engine

	mu          sync.Mutex
	current     *dataset
	cursor      int
	annotations map[string]annotation.FrameSet
}

// New builds a server and its routes.
func New(cfg *Config, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{cfg: cfg, logger: logger, annotations: make(map[string]annotation.FrameSet)}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	api := r.Group("/api")
	api.GET("/setup_video", s.setupVideo)
	api.GET("/set_frame_number", s.setFrameNumber)
	api.GET("/get_img", s.currentImage)
	api.POST("/save_rectangle", s.saveRectangle)
	r.GET("/get_images", s.listImages)
	r.GET("/images/:name", s.image)
	s.engine = r
	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver listening", "addr", s.cfg.Addr, "data_dir", s.cfg.DataDir)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type setupResponse struct {
	Success     bool                             `json:"success"`
	TotalFrames int                              `json:"total_frames,omitempty"`
	Rectangles  map[string]annotation.Rectangles `json:"rectangles,omitempty"`
	Error       string                           `json:"error,omitempty"`
}

type saveRequest struct {
	Frame      int                   `json:"frame"`
	Rectangles annotation.Rectangles `json:"rectangles"`
}

func (s *Server) setupVideo(c *gin.Context) {
	name := c.Query("name")
	ds, err := openDataset(s.cfg.DataDir, name)
	if err != nil {
		s.logger.Warn("setup failed", "name", name, "error", err)
		c.JSON(http.StatusOK, setupResponse{Error: err.Error()})
		return
	}
	s.mu.Lock()
	s.current = ds
	s.cursor = 0
	rects := make(map[string]annotation.Rectangles, len(s.annotations[name]))
	for frame, set := range s.annotations[name] {
		rects[strconv.Itoa(frame)] = set.Clone()
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, setupResponse{Success: true, TotalFrames: ds.total(), Rectangles: rects})
}

func (s *Server) setFrameNumber(c *gin.Context) {
	frame, err := strconv.Atoi(c.Query("frame"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "invalid frame"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "no video selected"})
		return
	}
	if _, ok := s.current.framePath(frame); !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": fmt.Sprintf("frame %d out of range", frame)})
		return
	}
	s.cursor = frame
	c.JSON(http.StatusOK, gin.H{"success": true, "frame": frame})
}

func (s *Server) currentImage(c *gin.Context) {
	s.mu.Lock()
	var (
		path string
		ok   bool
	)
	if s.current != nil {
		path, ok = s.current.framePath(s.cursor)
	}
	s.mu.Unlock()
	if !ok {
		c.String(http.StatusNotFound, "no frame")
		return
	}
	c.File(path)
}

// saveRectangle replaces the frame's rectangles with the valid entries of
// the request and reports the outcome per id.
func (s *Server) saveRectangle(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "no video selected"})
		return
	}
	if _, ok := s.current.framePath(req.Frame); !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": fmt.Sprintf("frame %d out of range", req.Frame)})
		return
	}
	results := make(map[string]bool, len(req.Rectangles))
	kept := make(annotation.Rectangles, len(req.Rectangles))
	for id, r := range req.Rectangles {
		ok := id != "" && validRectangle(r)
		results[id] = ok
		if ok {
			kept[id] = r
		}
	}
	set := s.annotations[s.current.name]
	if set == nil {
		set = make(annotation.FrameSet)
		s.annotations[s.current.name] = set
	}
	if len(kept) == 0 {
		delete(set, req.Frame)
	} else {
		set[req.Frame] = kept
	}
	c.JSON(http.StatusOK, gin.H{"success": len(kept) == len(req.Rectangles), "results": results})
}

func (s *Server) listImages(c *gin.Context) {
	names, err := listImages(s.cfg.DataDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, names)
}

func (s *Server) image(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || name == "." || name == ".." {
		c.String(http.StatusBadRequest, "invalid name")
		return
	}
	names, err := listImages(s.cfg.DataDir)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	i := sort.SearchStrings(names, name)
	if i == len(names) || names[i] != name {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.File(filepath.Join(s.cfg.DataDir, name))
}

func validRectangle(r annotation.Rectangle) bool {
	if r.Degenerate() || r.Size.W > 1 || r.Size.H > 1 {
		return false
	}
	return r.Center.X >= 0 && r.Center.X <= 1 && r.Center.Y >= 0 && r.Center.Y <= 1
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/recordfile"
	"github.com/relabs-tech/depth_logger/internal/store"
)

//go:embed static/index.html
var staticFS embed.FS

// Server answers the HTTP API. It only touches shared state through the
// store, the flag and the record file.
type Server struct {
	store *store.SampleStore
	flag  *store.LoggingFlag
	file  *recordfile.File
	now   func() time.Time
	log   *logrus.Entry

	// toggleMu keeps the logging gauge in step with the flag.
	toggleMu sync.Mutex
}

func NewServer(st *store.SampleStore, flag *store.LoggingFlag, file *recordfile.File) *Server {
	return &Server{
		store: st,
		flag:  flag,
		file:  file,
		now:   time.Now,
		log:   logging.For("web"),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /latest_data", s.handleLatest)
	mux.HandleFunc("POST /toggle_logging", s.handleToggle)
	mux.HandleFunc("GET /download_data", s.handleDownload)
	mux.HandleFunc("POST /delete_data", s.handleDelete)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "static/index.html")
	})
	return mux
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Get())
}

func (s *Server) handleToggle(w http.ResponseWriter, _ *http.Request) {
	s.toggleMu.Lock()
	on := s.flag.Toggle()
	metrics.SetLogging(on)
	s.toggleMu.Unlock()

	status := "stopped"
	if on {
		status = "started"
	}
	s.log.WithField("logging", on).Info("logging toggled")
	s.writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (s *Server) handleDownload(w http.ResponseWriter, _ *http.Request) {
	f, err := s.file.Open()
	if errors.Is(err, recordfile.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, statusResponse{Status: "not found"})
		return
	}
	if err != nil {
		s.log.WithError(err).Error("download failed")
		s.writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Error: err.Error()})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(s.file.Path())))
	if _, err := io.Copy(w, f); err != nil {
		s.log.WithError(err).Warn("download interrupted")
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, _ *http.Request) {
	err := s.file.Remove()
	if errors.Is(err, recordfile.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, statusResponse{Status: "not found"})
		return
	}
	if err != nil {
		s.log.WithError(err).Error("delete failed")
		s.writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Error: err.Error()})
		return
	}
	s.log.Info("record file deleted")
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

type recordFileStatus struct {
	Exists    bool  `json:"exists"`
	SizeBytes int64 `json:"size_bytes"`
}

type healthResponse struct {
	Logging          bool             `json:"logging"`
	LastSampleAgeSec float64          `json:"last_sample_age_sec"`
	RecordFile       recordFileStatus `json:"record_file"`
}

// handleStatus reports -1 for the sample age until the first sample.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Logging: s.flag.Enabled(), LastSampleAgeSec: -1}
	if t := s.store.Updated(); !t.IsZero() {
		resp.LastSampleAgeSec = s.now().Sub(t).Seconds()
	}

	exists, size, err := s.file.Stat()
	if err != nil {
		s.log.WithError(err).Warn("stat record file")
	}
	resp.RecordFile = recordFileStatus{Exists: exists, SizeBytes: size}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("json encode error")
	}
}

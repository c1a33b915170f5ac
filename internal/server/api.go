package server

import (
	"net/http"

	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/vibe"
)

const (
	msgPlaylistsFailed = "Failed to fetch playlists"
	msgVideosFailed    = "Failed to fetch videos"
)

type playlistsResponse struct {
	Playlists []core.PlaylistSummary `json:"playlists"`
}

type videosResponse struct {
	Videos []core.CatalogItem `json:"videos"`
}

type vibeDefinition struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Color    string   `json:"color"`
}

type classifyResponse struct {
	Vibes []vibe.Vibe `json:"vibes"`
}

func (s *Server) source(r *http.Request) core.CatalogSource {
	sess := sessionFromContext(r.Context())
	return s.sources(r.Context(), s.tokenSource(r.Context(), sess))
}

func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.source(r).ListPlaylists(r.Context())
	if err != nil {
		s.fetchFailed(w, r, err, msgPlaylistsFailed)
		return
	}
	if playlists == nil {
		playlists = []core.PlaylistSummary{}
	}
	writeJSON(w, http.StatusOK, playlistsResponse{Playlists: playlists})
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	src := s.source(r)

	var (
		items []core.CatalogItem
		err   error
	)
	if id := r.URL.Query().Get("playlistId"); id != "" {
		items, err = src.ListPlaylistItems(r.Context(), id)
	} else {
		items, err = src.ListOwnUploads(r.Context())
	}
	if err != nil {
		s.fetchFailed(w, r, err, msgVideosFailed)
		return
	}
	if items == nil {
		items = []core.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, videosResponse{Videos: items})
}

func (s *Server) fetchFailed(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.WithContext(r.Context(), s.logger)
	logger.Warn().
		Err(err).
		Str("kind", verrors.KindOf(err).String()).
		Msg(fallback)
	writeError(w, http.StatusInternalServerError, verrors.UserMessage(err, fallback))
}

func (s *Server) handleVibes(w http.ResponseWriter, r *http.Request) {
	defs := vibe.Definitions()
	out := make([]vibeDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, vibeDefinition{
			Name:     string(d.Name),
			Label:    d.Label,
			Keywords: d.Keywords,
			Color:    d.Color,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"vibes": out})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vibes := vibe.Classify(q.Get("title"), q.Get("description"))
	if vibes == nil {
		vibes = []vibe.Vibe{}
	}
	writeJSON(w, http.StatusOK, classifyResponse{Vibes: vibes})
}

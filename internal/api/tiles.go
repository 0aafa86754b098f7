package api

import (
	"encoding/json"
	"net/http"

	"github.com/padworks/padlink/internal/tiles"
)

// defaultTileWindow is how many neighbours each tile is distance-checked
// against when the request does not say.
const defaultTileWindow = 6

// tilesRequest mirrors the generator parameters. tile_window defaults to
// 6 when omitted; radius defaults to 0, which disables the constraint.
type tilesRequest struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Count      int     `json:"count"`
	TileWindow int     `json:"tile_window"`
	Radius     float64 `json:"radius"`
}

// handleTilesGenerate places count random tiles in a width x height
// space and returns their coordinates as parallel x/y arrays.
func (s *Server) handleTilesGenerate(w http.ResponseWriter, r *http.Request) {
	req := tilesRequest{TileWindow: defaultTileWindow}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	layout := s.tiles.Generate(tiles.Params{
		Width:  req.Width,
		Height: req.Height,
		Count:  req.Count,
		Window: req.TileWindow,
		Radius: req.Radius,
	})

	writeJSON(w, http.StatusOK, layout)
}

package api

import (
	"net/http"

	"github.com/Kalaith/last-hope/internal/consequence"
	"github.com/Kalaith/last-hope/internal/resources"
)

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	res, err := s.Sim.Choose(*req.Index)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Sim.AdvanceDay()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, rep)
}

func (s *Server) handlePlant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Species string `json:"species"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Species == "" {
		writeError(w, http.StatusBadRequest, "species is required")
		return
	}
	p, err := s.Sim.Plant(req.Species)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	res, err := s.Sim.Harvest()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Level int    `json:"level"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.Level == 0 {
		req.Level = 1
	}
	p, err := s.Sim.StartConstruction(req.Type, req.Level)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (s *Server) handleMaintain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	cost, err := s.Sim.PerformMaintenance(req.ID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"id": req.ID, "cost": cost})
}

func (s *Server) handleStartResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.Sim.StartResearch(req.ID); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, s.Sim.ResearchTree())
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Option string `json:"option"`
	}
	if !decode(w, r, &req) {
		return
	}
	opt, err := s.Sim.ResolveEvent(req.ID, req.Option)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, struct {
		Option    consequence.Option `json:"option"`
		Resources resources.Set      `json:"resources"`
	}{opt, s.Sim.Status().Resources})
}

func (s *Server) handleTalk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NPC string `json:"npc"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.Sim.Talk(req.NPC)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, res)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/padsync/backend/internal/store"
	"github.com/padsync/backend/internal/ws"
)

// API exposes read-only observability endpoints. Rooms are created and torn
// down exclusively through the websocket protocol, so nothing here can
// violate the room lifecycle.
type API struct {
	hub   *ws.Hub
	store store.Store
	log   *logrus.Entry
}

func New(hub *ws.Hub, st store.Store, log *logrus.Logger) *API {
	return &API{
		hub:   hub,
		store: st,
		log:   log.WithField("component", "api"),
	}
}

func (a *API) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.log.WithError(err).Error("encoding JSON response")
	}
}

func (a *API) errorResponse(w http.ResponseWriter, status int, message string) {
	a.jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	a.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.RoomCount(),
		"active_clients": a.hub.ClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := a.store.Count(r.Context()); err == nil {
		stats["tracked_rooms"] = count
	}

	a.jsonResponse(w, http.StatusOK, stats)
}

type RoomResponse struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *API) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.store.List(r.Context())
	if err != nil {
		a.errorResponse(w, http.StatusInternalServerError, "Failed to list rooms")
		return
	}

	activeRooms := a.hub.ActiveRooms()

	response := make([]RoomResponse, len(rooms))
	for i, rm := range rooms {
		response[i] = RoomResponse{
			ID:           rm.ID,
			Mode:         string(rm.Mode),
			Participants: activeRooms[rm.ID],
			CreatedAt:    rm.CreatedAt,
			UpdatedAt:    rm.UpdatedAt,
		}
	}

	a.jsonResponse(w, http.StatusOK, map[string]interface{}{"rooms": response})
}

func (a *API) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	// Extract room ID from path: /api/rooms/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
	roomID := strings.TrimSuffix(path, "/")

	if roomID == "" {
		a.errorResponse(w, http.StatusBadRequest, "Room ID is required")
		return
	}

	rm, err := a.store.Get(r.Context(), roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		a.errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		a.errorResponse(w, http.StatusInternalServerError, "Failed to get room")
		return
	}

	a.jsonResponse(w, http.StatusOK, RoomResponse{
		ID:           rm.ID,
		Mode:         string(rm.Mode),
		Participants: a.hub.Count(rm.ID),
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	})
}

// RoomsRouter dispatches /api/rooms and /api/rooms/{id}. Only reads are
// served; creation and deletion happen over the websocket protocol.
func (a *API) RoomsRouter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/rooms")
	if path == "" || path == "/" {
		a.ListRoomsHandler(w, r)
		return
	}
	a.GetRoomHandler(w, r)
}

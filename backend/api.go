package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type StatusResponse struct {
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Status          string            `json:"status"`
	Board           [][]int           `json:"board"`
	RedPieces       int               `json:"red_pieces"`
	BluePieces      int               `json:"blue_pieces"`
	NumJumps        int               `json:"num_jumps"`
	History         []historyEntryDTO `json:"history"`
	LastMessage     string            `json:"last_message"`
	AiThinking      bool              `json:"ai_thinking"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Mode        string   `json:"mode"`
	HumanPlayer int      `json:"human_player"`
	RedSeed     *int64   `json:"red_seed,omitempty"`
	BlueSeed    *int64   `json:"blue_seed,omitempty"`
	Blocks      []string `json:"blocks,omitempty"`
}

type apiMove struct {
	Move string `json:"move"`
}

type apiBlock struct {
	Square string `json:"square"`
}

type historyEntryDTO struct {
	Move      string       `json:"move"`
	Player    int          `json:"player"`
	ElapsedMs float64      `json:"elapsed_ms"`
	IsAi      bool         `json:"is_ai"`
	Converted int          `json:"converted"`
	Stats     *SearchStats `json:"stats,omitempty"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	Status StatusResponse `json:"status"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

func newRouter(controller *GameController, hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		if err := controller.StartGame(settings); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.PublishReset(resetPayload{Status: status})
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Reset(controller.Settings()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		status := controllerStatus(controller)
		hub.PublishReset(resetPayload{Status: status})
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   json.RawMessage  `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
			return
		}
		if len(payload.Config) > 0 {
			// Fields missing from the payload keep their current values.
			cfg := GetConfig()
			if err := json.Unmarshal(payload.Config, &cfg); err != nil {
				writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid config"))
				return
			}
			if err := configStore.Update(cfg); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			controller.ResetForConfigChange()
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			if err := controller.UpdateSettings(settings, false); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		hub.PublishSettings(settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   GetConfig(),
		})
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
			return
		}
		move, err := ParseMove(payload.Move)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		applied, errMsg := controller.ApplyHumanMove(move)
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			hub.PublishHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
		}
		status := controllerStatus(controller)
		hub.PublishStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/undo", func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Undo(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.PublishReset(resetPayload{Status: status})
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/block", func(w http.ResponseWriter, r *http.Request) {
		var payload apiBlock
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
			return
		}
		if err := controller.SetBlock(payload.Square); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.PublishStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	return r
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			log.Debug().Err(err).Msg("websocket writer stopped")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	board := controller.Board()
	status := controller.Status()
	return StatusResponse{
		Settings:        controllerSettingsDTO(controller.Settings()),
		Config:          GetConfig(),
		NextPlayer:      colorToInt(board.WhoseMove()),
		Winner:          winnerFromStatus(status),
		Status:          statusToString(status),
		Board:           boardToSlice(board),
		RedPieces:       board.RedPieces(),
		BluePieces:      board.BluePieces(),
		NumJumps:        board.NumJumps(),
		History:         historyToDTO(controller.History()),
		LastMessage:     controller.LastMessage(),
		AiThinking:      controller.AiThinking(),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.RedType = PlayerAI
		settings.BlueType = PlayerAI
	case "human_vs_human":
		settings.RedType = PlayerHuman
		settings.BlueType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 2 {
			settings.RedType = PlayerAI
			settings.BlueType = PlayerHuman
		} else {
			settings.RedType = PlayerHuman
			settings.BlueType = PlayerAI
		}
	}
	if dto.RedSeed != nil {
		settings.RedSeed = *dto.RedSeed
	}
	if dto.BlueSeed != nil {
		settings.BlueSeed = *dto.BlueSeed
	}
	if dto.Blocks != nil {
		settings.Blocks = append([]string(nil), dto.Blocks...)
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	if settings.RedType == PlayerAI && settings.BlueType == PlayerAI {
		mode = "ai_vs_ai"
	} else if settings.RedType == PlayerHuman && settings.BlueType == PlayerHuman {
		mode = "human_vs_human"
	}
	humanPlayer := 0
	if settings.RedType == PlayerHuman {
		humanPlayer = 1
	} else if settings.BlueType == PlayerHuman {
		humanPlayer = 2
	}
	redSeed, blueSeed := settings.RedSeed, settings.BlueSeed
	return GameSettingsDTO{
		Mode:        mode,
		HumanPlayer: humanPlayer,
		RedSeed:     &redSeed,
		BlueSeed:    &blueSeed,
		Blocks:      append([]string(nil), settings.Blocks...),
	}
}

func boardToSlice(board *Board) [][]int {
	rows := make([][]int, Side)
	for row := 0; row < Side; row++ {
		rows[row] = make([]int, Side)
		for col := 0; col < Side; col++ {
			rows[row][col] = colorToInt(board.At(col, row))
		}
	}
	return rows
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Move:      entry.Move.String(),
		Player:    colorToInt(entry.Player),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Converted: entry.Converted,
		Stats:     entry.Stats,
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

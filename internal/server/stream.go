package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamRequest asks for one match. Either Name refers to a registered
// pattern or Pattern is compiled for this request only.
type streamRequest struct {
	Name    string `json:"name,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Text    string `json:"text"`
}

type streamResponse struct {
	Matched bool                   `json:"matched"`
	Error   map[string]interface{} `json:"error,omitempty"`
}

// handleStream answers match requests over a WebSocket until the client
// closes the connection. Each frame gets exactly one response, in order; a
// frame that is not a valid request is answered with an error.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(h.maxBody())
	h.logger.Debug("stream opened", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("stream read failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		var resp streamResponse
		var req streamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.logger.Debug("stream request rejected", "remote", r.RemoteAddr, "error", err)
			resp = streamResponse{Error: errorBody(errors.New("invalid request: " + err.Error()))}
		} else {
			resp = h.answer(req)
		}

		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Warn("stream write failed", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func (h *Handler) answer(req streamRequest) streamResponse {
	if err := h.checkText(req.Text); err != nil {
		return streamResponse{Error: errorBody(err)}
	}

	if req.Name != "" {
		p, err := h.registry.Get(req.Name)
		if err != nil {
			return streamResponse{Error: errorBody(err)}
		}
		return streamResponse{Matched: p.Match(req.Text)}
	}

	re, err := h.registry.Compile(req.Pattern)
	if err != nil {
		return streamResponse{Error: errorBody(err)}
	}
	return streamResponse{Matched: re.MatchString(req.Text)}
}

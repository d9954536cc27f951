package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tieubaoca/docuchat-be/types"
)

// WebSocketService serves the interactive chat over a websocket. Each
// connection owns one conversation session; the session dies with the
// connection and a reset message clears it in place.
type WebSocketService struct {
	rag         *RAGService
	sessions    *SessionManager
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

func NewWebSocketService(rag *RAGService, sessions *SessionManager) *WebSocketService {
	return &WebSocketService{
		rag:      rag,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		readTimeout: 60 * time.Second,
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	// Set connection properties
	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := uuid.NewString()
	session := s.sessions.Get(sessionID)
	defer s.sessions.Remove(sessionID)

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		// Any client message counts as activity; only a silent connection
		// times out.
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Unmarshal error:", err)
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Marshal error:", err)
			continue
		}
		switch req.Type {
		case types.TypeWebsocketAsk:
			var payload types.WebsocketAskPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				log.Println("Unmarshal error:", err)
				conn.WriteMessage(messageType, []byte("Error processing message"))
				continue
			}
			answer, err := s.rag.Answer(ctx, payload.Question, session)
			if err != nil {
				log.Println("Answer error:", err)
				conn.WriteJSON(types.WebsocketResponse{
					Type:    types.TypeWebsocketError,
					Payload: "Could not generate an answer, please retry",
				})
				continue
			}
			res := types.WebsocketResponse{
				Type: types.TypeWebsocketAsk,
				Payload: types.WebsocketAnswerPayload{
					Answer:  answer.Content,
					Sources: answer.Sources,
				},
			}
			if err := conn.WriteJSON(res); err != nil {
				log.Println("Write error:", err)
				continue
			}
		case types.TypeWebsocketReset:
			session.Clear()
			if err := conn.WriteJSON(types.WebsocketResponse{Type: types.TypeWebsocketReset}); err != nil {
				log.Println("Write error:", err)
			}
		case types.TypeWebsocketPing:
			pongRes := types.WebsocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

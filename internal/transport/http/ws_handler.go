package http

import (
	"encoding/json"
	"log"
	"net/http"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
	"github.com/gorilla/websocket"
)

// WSHandler drives an interactive quiz session over a websocket: the client
// starts a session, receives one question at a time, and gets per-answer
// feedback plus the final result. All writes happen from the read loop, so
// the connection never sees concurrent writes.
type WSHandler struct {
	engine   *engine.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(eng *engine.Engine) *WSHandler {
	return &WSHandler{
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID       string `json:"questionId"`
	Answer           string `json:"answer"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	SessionID      string `json:"sessionId"`
	TotalQuestions int    `json:"totalQuestions"`
}

type questionPayload struct {
	Index int                 `json:"index"`
	ID    string              `json:"id"`
	Type  domain.QuestionType `json:"questionType"`
	Text  string              `json:"text"`
}

type completedPayload struct {
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
}

// ServeWS upgrades the request and runs one quiz session for the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.engine.StartSession(r.Context(), quizID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	_ = conn.WriteJSON(outboundMessage[startedPayload]{Type: "started", Payload: startedPayload{
		SessionID:      session.ID,
		TotalQuestions: session.TotalQuestions,
	}})
	h.sendQuestion(conn, session, 0)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			// Client went away mid-session; the session stays in_progress
			// and can be resumed or abandoned via a later connection.
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			result, err := h.engine.SubmitAnswer(r.Context(), engine.SubmitRequest{
				SessionID:        session.ID,
				QuestionID:       payload.QuestionID,
				Answer:           payload.Answer,
				TimeTakenSeconds: payload.TimeTakenSeconds,
			})
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[*domain.SubmitResult]{Type: "result", Payload: result})
			if result.SessionCompleted {
				final, err := h.engine.GetSession(r.Context(), session.ID)
				if err != nil {
					h.sendError(conn, err.Error())
					return
				}
				_ = conn.WriteJSON(outboundMessage[completedPayload]{Type: "completed", Payload: completedPayload{
					Score:  final.Score,
					Passed: final.Passed,
				}})
				return
			}
			h.sendQuestion(conn, session, result.Answered)
		case "abandon":
			if err := h.engine.AbandonSession(r.Context(), session.ID); err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[struct{}]{Type: "abandoned"})
			return
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, session *domain.QuizSession, index int) {
	if index < 0 || index >= len(session.Questions) {
		return
	}
	q := session.Questions[index]
	_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
		Index: index,
		ID:    q.ID,
		Type:  q.Type,
		Text:  q.Text,
	}})
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}

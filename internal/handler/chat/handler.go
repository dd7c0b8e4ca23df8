package chat

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/anthonytapias/charmefy/internal/model/character"
	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
	"github.com/anthonytapias/charmefy/internal/service/ai"
	"github.com/anthonytapias/charmefy/internal/service/conversation"
)

// Handler 聊天服务的WebSocket处理器
type Handler struct {
	convSvc    *conversation.Service
	aiSvc      *ai.Service
	characters character.Store
	upgrader   websocket.Upgrader
}

// New 创建聊天处理器; aiSvc为nil时使用内置回复
func New(convSvc *conversation.Service, aiSvc *ai.Service, characters character.Store) *Handler {
	return &Handler{
		convSvc:    convSvc,
		aiSvc:      aiSvc,
		characters: characters,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat/{characterID}", h.handleChat)
}

// clientFrame 客户端入站帧
type clientFrame struct {
	Type      string                        `json:"type"`
	SessionID string                        `json:"sessionId"`
	Character chatmodel.CharacterDescriptor `json:"character"`
	Content   string                        `json:"content"`
}

// connState 单条连接的会话状态
type connState struct {
	sessionID   string
	character   chatmodel.CharacterDescriptor
	conv        conversation.Conversation
	initialized bool
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.Atoi(chi.URLParam(r, "characterID"))
	if err != nil {
		http.Error(w, "invalid character id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connected for character %d", characterID)

	state := &connState{}
	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		switch frame.Type {
		case chatmodel.FrameInit:
			if err := h.handleInit(r.Context(), conn, state, frame, characterID); err != nil {
				log.Printf("[ws] init failed: %v", err)
				h.sendError(conn, err.Error())
			}
		case chatmodel.FrameMessage:
			h.handleMessage(r.Context(), conn, state, frame.Content)
		default:
			log.Printf("[ws] ignoring frame with unknown type %q", frame.Type)
		}
	}
}

// handleInit 建立或恢复会话并回放历史
func (h *Handler) handleInit(ctx context.Context, conn *websocket.Conn, state *connState, frame clientFrame, characterID int) error {
	state.sessionID = frame.SessionID
	if state.sessionID == "" {
		// 客户端未携带会话ID时由服务端签发
		state.sessionID = uuid.NewString()
		if err := conn.WriteJSON(chatmodel.ServerFrame{Type: chatmodel.FrameSession, SessionID: state.sessionID}); err != nil {
			return fmt.Errorf("send session frame: %w", err)
		}
	}

	state.character = frame.Character
	if state.character.ID == 0 {
		state.character.ID = characterID
	}
	if state.character.Name == "" {
		if known, ok := h.characters.FindByID(state.character.ID); ok {
			state.character = known.Descriptor()
		}
	}

	conv, err := h.convSvc.GetOrCreate(ctx, state.sessionID, state.character.ID, state.character.Name, state.character.Avatar)
	if err != nil {
		return fmt.Errorf("open conversation: %w", err)
	}
	state.conv = conv
	state.initialized = true

	transcript, err := h.convSvc.Transcript(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	if len(transcript) > 0 {
		history := make([]chatmodel.HistoryMessage, 0, len(transcript))
		for _, msg := range transcript {
			history = append(history, chatmodel.HistoryMessage{Sender: msg.Sender, Content: msg.Content})
		}
		if err := conn.WriteJSON(chatmodel.ServerFrame{Type: chatmodel.FrameHistory, Messages: history}); err != nil {
			return fmt.Errorf("send history frame: %w", err)
		}
	}

	log.Printf("[ws] session %.8s... chatting with %s (%d stored turns)", state.sessionID, state.character.Name, len(transcript))
	return nil
}

// handleMessage 保存用户消息并生成角色回复
func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connState, content string) {
	if !state.initialized {
		h.sendError(conn, "chat not initialized")
		return
	}

	if err := h.convSvc.Append(ctx, state.conv.ID, string(chatmodel.SenderUser), content); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	// 回复生成期间提示对方正在输入
	if err := conn.WriteJSON(chatmodel.ServerFrame{Type: chatmodel.FrameTyping}); err != nil {
		log.Printf("[ws] typing frame failed: %v", err)
		return
	}

	reply, err := h.generateReply(ctx, state, content)
	if err != nil {
		log.Printf("[ws] reply generation failed: %v", err)
		h.sendError(conn, fmt.Sprintf("AI Error: %v", err))
		return
	}

	if err := h.convSvc.Append(ctx, state.conv.ID, string(chatmodel.SenderPartner), reply); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	if err := conn.WriteJSON(chatmodel.ServerFrame{Type: chatmodel.FrameMessage, Content: reply}); err != nil {
		log.Printf("[ws] message frame failed: %v", err)
	}
}

func (h *Handler) generateReply(ctx context.Context, state *connState, userMessage string) (string, error) {
	transcript, err := h.convSvc.Transcript(ctx, state.conv.ID)
	if err != nil {
		return "", err
	}
	// 最后一条是刚保存的用户消息，不计入历史
	if len(transcript) > 0 {
		transcript = transcript[:len(transcript)-1]
	}

	if h.aiSvc != nil {
		return h.aiSvc.GenerateReply(ctx, state.character.SystemPrompt, transcript, userMessage)
	}
	return cannedReply(state.character.Name, len(transcript)), nil
}

// cannedReply 未配置模型凭证时的占位回复
func cannedReply(name string, turn int) string {
	replies := []string{
		"*smiles warmly* It's so good to hear from you. Tell me more?",
		"*leans in a little closer* I was just thinking about you.",
		"*laughs softly* You always know what to say. Go on...",
	}
	reply := replies[turn%len(replies)]
	if name != "" && turn == 0 {
		reply = fmt.Sprintf("*smiles warmly* Hi, I'm %s. It's so good to hear from you.", name)
	}
	return reply
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(chatmodel.ServerFrame{Type: chatmodel.FrameError, Message: message}); err != nil {
		log.Printf("[ws] error frame failed: %v", err)
	}
}

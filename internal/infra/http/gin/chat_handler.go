package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/app/dto"
	chatsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/chat"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

type ChatHTTP interface {
	Resolve(c *gin.Context)
	MyConversations(c *gin.Context)
	Messages(c *gin.Context)
	Send(c *gin.Context)
	MarkRead(c *gin.Context)
	Stream(c *gin.Context)
}

type ChatHandler struct {
	Resolver *chatsvc.Resolver
	Sender   *chatsvc.Sender
	Store    domainchat.Store
	Logger   *slog.Logger
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// Resolve opens chat from a listing page: renters get their single thread
// (created on first open), owners get the thread list.
func (h ChatHandler) Resolve(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	resolution, err := h.Resolver.Resolve(c.Request.Context(), c.Param("id"), p.ID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapChatResolution(resolution))
}

func (h ChatHandler) MyConversations(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	threads, err := h.Store.ConversationsByParticipant(c.Request.Context(), p.ID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	domainchat.SortByActivity(threads)
	c.JSON(http.StatusOK, gin.H{"items": dto.MapConversations(threads)})
}

func (h ChatHandler) Messages(c *gin.Context) {
	_, key, ok := h.participantKey(c)
	if !ok {
		return
	}
	messages, err := h.Store.Messages(c.Request.Context(), key)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapChatMessages(messages))
}

func (h ChatHandler) Send(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	key, err := domainchat.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	message, err := h.Sender.Send(c.Request.Context(), key, p.ID, req.Text)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapChatMessage(message))
}

func (h ChatHandler) MarkRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	key, err := domainchat.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	marked, err := h.Sender.MarkConversationRead(c.Request.Context(), key, p.ID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// Stream pushes full message snapshots over SSE. Each event carries the
// complete current list; the client replaces its view, never appends.
func (h ChatHandler) Stream(c *gin.Context) {
	p, key, ok := h.participantKey(c)
	if !ok {
		return
	}

	snapshots := make(chan chatsvc.Snapshot, 1)
	manager := &chatsvc.FeedManager{
		Store:    h.Store,
		ViewerID: p.ID,
		Logger:   h.Logger,
		OnSnapshot: func(snapshot chatsvc.Snapshot) {
			select {
			case snapshots <- snapshot:
			default:
				select {
				case <-snapshots:
				default:
				}
				select {
				case snapshots <- snapshot:
				default:
				}
			}
		},
	}
	defer manager.Close()

	if err := manager.Switch(c.Request.Context(), key); err != nil {
		h.respondChatError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snapshot, open := <-snapshots:
			if !open {
				return false
			}
			c.SSEvent("snapshot", dto.MapChatMessages(snapshot.Messages))
			return true
		}
	})
}

// participantKey parses the key parameter and checks the caller belongs to
// the thread before any message data is exposed.
func (h ChatHandler) participantKey(c *gin.Context) (principal, domainchat.Key, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, "", false
	}
	key, err := domainchat.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return principal{}, "", false
	}
	conversation, err := h.Store.Conversation(c.Request.Context(), key)
	if err != nil {
		h.respondChatError(c, err)
		return principal{}, "", false
	}
	if !conversation.HasParticipant(p.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return principal{}, "", false
	}
	return p, key, true
}

func (h ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chatsvc.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
	case errors.Is(err, chatsvc.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
	case errors.Is(err, chatsvc.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, domainchat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, chatsvc.ErrListingBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "listing is booked"})
	case errors.Is(err, domainchat.ErrTextRequired),
		errors.Is(err, domainchat.ErrMalformedKey),
		errors.Is(err, domainchat.ErrSameParticipant),
		errors.Is(err, domainchat.ErrDelimiterInID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("chat operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ChatHTTP = (*ChatHandler)(nil)

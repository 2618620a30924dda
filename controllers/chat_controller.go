package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sahayakseva/backend/chat"
	"sahayakseva/backend/models"
	"sahayakseva/backend/schemes"
)

const (
	topicComplaint = "complaint"
	topicScheme    = "scheme"

	complaintGreeting = "Hello! I'm your virtual complaint assistant. I can help you file a complaint regarding any issues with government services like ration distribution, pension, gas cylinder subsidy, or others. Please describe your problem in detail, and I'll help you submit it to the right department. You can speak or type in any language."
	noSchemeNotice    = "No specific scheme selected"
	noSchemeHint      = "You can still ask general questions about government schemes and I'll do my best to help."
)

func schemeGreeting(s *models.Scheme) string {
	return fmt.Sprintf("Hello! I'm your virtual assistant for the %s application. I can help you complete the application form. You can speak or type in any language, and I'll understand and assist you. How would you like to proceed with your application?", s.Name)
}

func schemeTopic(id string) string {
	if id == "" {
		return topicScheme
	}
	return topicScheme + ":" + id
}

// conversation resumes the stored transcript for topic. A store failure
// starts an empty transcript rather than blocking the page.
func conversation(c *gin.Context, d *Deps, topic, greeting string, send chat.Sender) *chat.Conversation {
	accountID := c.GetString("account_id")
	history, err := d.Chats.Load(c.Request.Context(), accountID, topic)
	if err != nil {
		d.Log.Warn("load transcript", zap.String("account_id", accountID), zap.String("topic", topic), zap.Error(err))
		history = nil
	}
	return chat.NewConversation(greeting, history, send)
}

// lookupScheme resolves :schemeId. ok is false when a response was already written.
func lookupScheme(c *gin.Context, d *Deps) (scheme *models.Scheme, ok bool) {
	id := c.Param("schemeId")
	if id == "" {
		return nil, true
	}
	s, err := d.Schemes.GetSchemeByID(c.Request.Context(), id)
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, schemes.ErrSchemeNotFound):
		return nil, true
	default:
		d.Log.Error("get scheme", zap.String("scheme_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load scheme"})
		return nil, false
	}
}

func schemeSender(d *Deps, schemeID string) chat.Sender {
	return func(ctx context.Context, text string) (string, error) {
		return d.Schemes.SendSchemeMessage(ctx, text, schemeID)
	}
}

// SchemeChat renders the assistant for /scheme-chat and /scheme-chat/:schemeId.
func SchemeChat(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, ok := lookupScheme(c, d)
		if !ok {
			return
		}
		if scheme == nil {
			c.JSON(http.StatusOK, gin.H{
				"page":       "scheme-chat",
				"scheme":     nil,
				"notice":     noSchemeNotice,
				"hint":       noSchemeHint,
				"browse":     "/dashboard",
				"transcript": conversation(c, d, topicScheme, "", nil).Transcript(),
			})
			return
		}
		conv := conversation(c, d, schemeTopic(scheme.ID), schemeGreeting(scheme), nil)
		c.JSON(http.StatusOK, gin.H{
			"page":       "scheme-chat",
			"scheme":     scheme,
			"transcript": conv.Transcript(),
		})
	}
}

// SendSchemeMessage posts to the assistant. Without a known scheme the
// message goes out as a general question.
func SendSchemeMessage(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, ok := lookupScheme(c, d)
		if !ok {
			return
		}
		topic, greeting, schemeID := topicScheme, "", ""
		if scheme != nil {
			topic, greeting, schemeID = schemeTopic(scheme.ID), schemeGreeting(scheme), scheme.ID
		}
		send(c, d, topicScheme, topic, conversation(c, d, topic, greeting, schemeSender(d, schemeID)))
	}
}

func Complaint(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv := conversation(c, d, topicComplaint, complaintGreeting, nil)
		c.JSON(http.StatusOK, gin.H{"page": "complaint", "transcript": conv.Transcript()})
	}
}

func SendComplaint(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv := conversation(c, d, topicComplaint, complaintGreeting, d.Schemes.SendComplaintMessage)
		send(c, d, topicComplaint, topicComplaint, conv)
	}
}

// send runs one exchange. A failed send reports the typed text back and
// leaves the stored transcript unchanged.
func send(c *gin.Context, d *Deps, kind, topic string, conv *chat.Conversation) {
	var req models.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	start := time.Now()
	exchanged, err := conv.Send(c.Request.Context(), req.Message)
	d.Metrics.ChatLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		d.Metrics.ChatSends.WithLabelValues(kind, "error").Inc()
		d.Log.Warn("chat send failed", zap.String("topic", topic), zap.Error(err))
		var se *chat.SendError
		text := req.Message
		if errors.As(err, &se) {
			text = se.Text
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message", "message": text})
		return
	}
	d.Metrics.ChatSends.WithLabelValues(kind, "ok").Inc()

	accountID := c.GetString("account_id")
	if err := d.Chats.Append(c.Request.Context(), accountID, topic, exchanged...); err != nil {
		d.Log.Error("append transcript", zap.String("account_id", accountID), zap.String("topic", topic), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"messages": exchanged, "transcript": conv.Transcript()})
}

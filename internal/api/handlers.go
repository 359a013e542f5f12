package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/delivery"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
)

// generateDraftRequest is the POST /api/generate-draft body.
type generateDraftRequest struct {
	Title string `json:"title"`
}

func (r *Router) generateDraft(c *gin.Context) {
	var req generateDraftRequest
	// An empty body is fine; the generator supplies a dated title.
	_ = c.ShouldBindJSON(&req)

	nl, err := r.generator.GenerateDraft(c.Request.Context(), currentUser(c), req.Title)
	if err != nil {
		r.logger.Warn("draft generation failed",
			logger.String("user_id", currentUser(c)),
			logger.Error(err))
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"newsletter": nl})
}

// regenerateDraft reruns the content pipeline for an existing draft.
// Newsletters past draft cannot be regenerated and report 404.
func (r *Router) regenerateDraft(c *gin.Context) {
	id, ok := parseUUID(c, "id", "newsletter")
	if !ok {
		return
	}

	nl, err := r.generator.RegenerateDraft(c.Request.Context(), currentUser(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"newsletter": nl})
}

// sendNewsletterRequest is the POST /api/send-newsletter body.
type sendNewsletterRequest struct {
	NewsletterID    uuid.UUID   `json:"newsletter_id" binding:"required"`
	ClientIDs       []uuid.UUID `json:"client_ids"`
	SendImmediately bool        `json:"send_immediately"`
	ScheduledTime   string      `json:"scheduled_time"`
	TestMode        bool        `json:"test_mode"`
}

func (r *Router) sendNewsletter(c *gin.Context) {
	var req sendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := r.sender.Send(c.Request.Context(), delivery.SendRequest{
		UserID:          currentUser(c),
		NewsletterID:    req.NewsletterID,
		ClientIDs:       req.ClientIDs,
		SendImmediately: req.SendImmediately,
		ScheduledTime:   req.ScheduledTime,
		TestMode:        req.TestMode,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (r *Router) listNewsletters(c *gin.Context) {
	newsletters, err := r.newsletters.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"newsletters": newsletters})
}

func (r *Router) listScheduledNewsletters(c *gin.Context) {
	newsletters, err := r.newsletters.ListScheduledByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"newsletters": newsletters})
}

func (r *Router) listSources(c *gin.Context) {
	sources, err := r.sources.ListActiveByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

// getSourceContent previews one source's fetched items, served from the
// content cache when warm.
func (r *Router) getSourceContent(c *gin.Context) {
	id, ok := parseUUID(c, "id", "source")
	if !ok {
		return
	}

	src, err := r.sources.GetOwned(c.Request.Context(), id, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items, err := r.content.FetchSource(c.Request.Context(), *src)
	if err != nil {
		r.logger.Warn("source content fetch failed",
			logger.String("source_id", id.String()),
			logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch source content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"source": src, "items": items})
}

func (r *Router) listClients(c *gin.Context) {
	clients, err := r.clients.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// testEmailRequest is the POST /api/test-email body.
type testEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (r *Router) testEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := "<html><body><p>CreatorPulse SMTP configuration works.</p></body></html>"
	if err := r.mailer.Send(c.Request.Context(), req.Email, "CreatorPulse test email", body); err != nil {
		r.logger.Warn("test email failed",
			logger.String("to", req.Email),
			logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send test email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

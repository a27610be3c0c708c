package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
)

// HandleRazorpayWebhook ingests one gateway delivery. Duplicates and
// unsupported event kinds are acknowledged with 200 so the gateway stops
// retrying; signature and payload failures get 400 and processing failures
// bubble up as 5xx so the gateway retries.
func (s *Server) HandleRazorpayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.webhookSvc.Ingest(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrDuplicateDelivery) ||
			errors.Is(err, paymentdomain.ErrUnsupportedEvent) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/store"
)

// LedgerHandler — чтение журнала выплат.
type LedgerHandler struct {
	ledger *store.Ledger
}

// NewLedgerHandler создаёт обработчик журнала выплат.
func NewLedgerHandler(ledger *store.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// LedgerEntryResponse — запись журнала в ответе API.
type LedgerEntryResponse struct {
	ID                  string    `json:"id"`
	SellerID            string    `json:"seller_id"`
	OrderID             int64     `json:"order_id"`
	AmountGross         int64     `json:"amount_gross"`
	PlatformFee         int64     `json:"platform_fee"`
	SellerNet           int64     `json:"seller_net"`
	Currency            string    `json:"currency"`
	PayoutStatus        string    `json:"payout_status"`
	ScheduledPayoutDate time.Time `json:"scheduled_payout_date"`
	CreatedAt           time.Time `json:"created_at"`
}

// ListLedgerResponse — ответ со всеми записями журнала.
type ListLedgerResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Total   int                   `json:"total"`
}

// ListLedger возвращает все записи журнала в порядке создания.
// GET /api/v1/ledger
func (h *LedgerHandler) ListLedger(c *gin.Context) {
	entries := h.ledger.List()

	resp := ListLedgerResponse{
		Entries: make([]LedgerEntryResponse, 0, len(entries)),
		Total:   len(entries),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, LedgerEntryResponse{
			ID:                  e.ID,
			SellerID:            e.SellerID,
			OrderID:             e.OrderID,
			AmountGross:         e.AmountGross,
			PlatformFee:         e.PlatformFee,
			SellerNet:           e.SellerNet,
			Currency:            e.Currency,
			PayoutStatus:        string(e.PayoutStatus),
			ScheduledPayoutDate: e.ScheduledPayoutDate,
			CreatedAt:           e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

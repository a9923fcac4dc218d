package processor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/checkout-coordinator/internal/domain"
)

// DefaultTolerance — максимально допустимый возраст подписи вебхука.
const DefaultTolerance = 5 * time.Minute

// SignatureHeader — имя заголовка с подписью вебхука провайдера.
const SignatureHeader = "X-Processor-Signature"

// WebhookVerifier проверяет HMAC-подпись входящих вебхуков.
// Формат заголовка: "t=<unix>,v1=<hex hmac-sha256(secret, "<t>.<body>")>".
// Пустой секрет переводит верификатор в degraded-режим: подпись не
// проверяется вовсе, о чём сервис предупреждает при старте.
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewWebhookVerifier создаёт верификатор. tolerance <= 0 заменяется
// значением по умолчанию.
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &WebhookVerifier{
		secret:    key,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// SetClock подменяет источник времени. Только для тестов.
func (v *WebhookVerifier) SetClock(now func() time.Time) {
	v.now = now
}

// Degraded сообщает, работает ли верификатор без секрета.
func (v *WebhookVerifier) Degraded() bool {
	return len(v.secret) == 0
}

// Verify проверяет подпись тела вебхука. В degraded-режиме всегда nil.
// Любое нарушение — неверный формат заголовка, устаревшая метка времени,
// несовпадение HMAC — возвращается как ErrInvalidSignature.
func (v *WebhookVerifier) Verify(header string, body []byte) error {
	if v.Degraded() {
		return nil
	}

	ts, sig, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return domain.ErrInvalidSignature
	}

	expected := ComputeSignature(v.secret, ts, body)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return domain.ErrInvalidSignature
	}

	return nil
}

// ComputeSignature считает hex(hmac-sha256(secret, "<ts>.<body>")).
// Экспортирована для формирования валидных подписей в тестах и
// в dev-симуляции.
func ComputeSignature(secret []byte, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildSignatureHeader собирает полный заголовок подписи для тела body.
func BuildSignatureHeader(secret []byte, ts int64, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(secret, ts, body))
}

// parseSignatureHeader разбирает "t=<unix>,v1=<hex>". Порядок элементов
// фиксирован, лишние элементы игнорируются.
func parseSignatureHeader(header string) (ts int64, sig string, err error) {
	if header == "" {
		return 0, "", domain.ErrInvalidSignature
	}

	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, "", domain.ErrInvalidSignature
			}
		case "v1":
			sig = val
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", domain.ErrInvalidSignature
	}
	return ts, sig, nil
}

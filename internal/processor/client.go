// Package processor инкапсулирует взаимодействие с внешним платёжным
// провайдером: создание платёжных намерений и проверку подписи вебхуков.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/pkg/circuitbreaker"
	"example.com/checkout-coordinator/pkg/logger"
)

const defaultRequestTimeout = 10 * time.Second

// Intent — платёжное намерение, созданное провайдером.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Client — HTTP-клиент платёжного провайдера. Все исходящие вызовы
// проходят через circuit breaker: при серии отказов провайдера клиент
// быстро отвечает ErrProcessorUnavailable вместо накопления таймаутов.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	breaker   *circuitbreaker.Breaker
}

// NewClient создаёт клиента провайдера. Пустой secretKey — допустимое
// состояние: клиент создаётся, но каждое обращение будет завершаться
// ErrProcessorMisconfigured до появления ключа в окружении.
func NewClient(baseURL, secretKey string, timeout time.Duration, breaker *circuitbreaker.Breaker) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
		breaker:   breaker,
	}
}

// Configured сообщает, задан ли секретный ключ провайдера.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

// CreateIntent создаёт платёжное намерение на сумму amount (в минимальных
// единицах валюты). Без ключа — ErrProcessorMisconfigured; при недоступности
// провайдера или открытом breaker — ErrProcessorUnavailable.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	if !c.Configured() {
		return nil, domain.ErrProcessorMisconfigured
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.createIntent(ctx, amount, currency)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			logger.Ctx(ctx).Warn().Msg("circuit breaker платёжного провайдера открыт, запрос отклонён")
			return nil, domain.ErrProcessorUnavailable
		}
		return nil, err
	}

	return result.(*Intent), nil
}

func (c *Client) createIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("создание запроса к провайдеру: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("платёжный провайдер недоступен")
		return nil, domain.ErrProcessorUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Ctx(ctx).Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("провайдер ответил ошибкой на создание intent")
		return nil, domain.ErrProcessorUnavailable
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("декодирование ответа провайдера: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("провайдер вернул intent без id: %w", domain.ErrProcessorUnavailable)
	}

	return &intent, nil
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/logger"
	"tourbook/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventPaymentSucceeded = "payment.succeeded"

var (
	ErrPaymentNotConfigured = errors.New("payment provider is not configured")
	ErrPaymentNotSucceeded  = errors.New("payment has not succeeded")
	ErrBadNotification      = errors.New("malformed payment notification")
)

// CheckoutService ходит в API платёжного провайдера (YooKassa-совместимое):
// создаёт платёж с redirect-подтверждением и проверяет платёж по уведомлению.
type CheckoutService struct {
	apiURL     string
	shopID     string
	secretKey  string
	currency   string
	httpClient *http.Client
}

func NewCheckoutService(cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		apiURL:     strings.TrimRight(cfg.PaymentAPIURL, "/"),
		shopID:     cfg.PaymentShopID,
		secretKey:  cfg.PaymentSecret,
		currency:   cfg.PaymentCurrency,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Confirmation Confirmation      `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

type payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       Amount            `json:"amount"`
	Confirmation Confirmation      `json:"confirmation"`
	Metadata     map[string]string `json:"metadata"`
}

// CheckoutSession - то, что отдаём клиенту для перехода на оплату.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentEvent - подтверждённый провайдером успешный платёж за тур.
type PaymentEvent struct {
	PaymentID string
	TourID    int64
	UserID    int64
	Amount    float64
}

func (s *CheckoutService) do(ctx context.Context, method, path string, body any, out any) error {
	if s.shopID == "" || s.secretKey == "" {
		return ErrPaymentNotConfigured
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+path, rd)
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.shopID, s.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotence-Key", uuid.NewString())
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payment provider: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateSession создаёт платёж за тур и возвращает ссылку на страницу оплаты.
func (s *CheckoutService) CreateSession(ctx context.Context, tour *models.Tour, user *models.User, returnURL string) (*CheckoutSession, error) {
	log := logger.WithCtx(ctx)
	reqBody := createPaymentRequest{
		Amount: Amount{
			Value:    strconv.FormatFloat(tour.Price, 'f', 2, 64),
			Currency: s.currency,
		},
		Confirmation: Confirmation{Type: "redirect", ReturnURL: returnURL},
		Capture:      true,
		Description:  fmt.Sprintf("%s Tour", tour.Name),
		Metadata: map[string]string{
			"tour_id":    strconv.FormatInt(tour.ID, 10),
			"user_id":    strconv.FormatInt(user.ID, 10),
			"user_email": user.Email,
		},
	}

	var res payment
	if err := s.do(ctx, http.MethodPost, "/payments", reqBody, &res); err != nil {
		log.Error("Ошибка создания платежа", zap.Int64("tour_id", tour.ID), zap.Error(err))
		return nil, err
	}
	log.Info("Платёж создан", zap.String("payment_id", res.ID), zap.Int64("tour_id", tour.ID))
	return &CheckoutSession{ID: res.ID, URL: res.Confirmation.ConfirmationURL}, nil
}

type notification struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// VerifyNotification разбирает уведомление провайдера. Телу уведомления не доверяем:
// платёж перечитывается из API и должен быть в статусе succeeded.
// Для событий, кроме payment.succeeded, возвращает nil, nil.
func (s *CheckoutService) VerifyNotification(ctx context.Context, body []byte) (*PaymentEvent, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadNotification, err)
	}
	if n.Event != eventPaymentSucceeded {
		logger.WithCtx(ctx).Debug("Пропускаем событие платежа", zap.String("event", n.Event))
		return nil, nil
	}
	if !validPaymentID(n.Object.ID) {
		return nil, fmt.Errorf("%w: payment id %q", ErrBadNotification, n.Object.ID)
	}

	var p payment
	if err := s.do(ctx, http.MethodGet, "/payments/"+n.Object.ID, nil, &p); err != nil {
		return nil, err
	}
	if p.Status != "succeeded" {
		return nil, fmt.Errorf("%w: %s is %s", ErrPaymentNotSucceeded, p.ID, p.Status)
	}
	return paymentEvent(&p)
}

// validPaymentID пропускает только id, которые безопасно подставить в путь API.
func validPaymentID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func paymentEvent(p *payment) (*PaymentEvent, error) {
	tourID, err := strconv.ParseInt(p.Metadata["tour_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("payment %s: tour_id: %w", p.ID, err)
	}
	userID, err := strconv.ParseInt(p.Metadata["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("payment %s: user_id: %w", p.ID, err)
	}
	amount, err := strconv.ParseFloat(p.Amount.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("payment %s: amount: %w", p.ID, err)
	}
	return &PaymentEvent{PaymentID: p.ID, TourID: tourID, UserID: userID, Amount: amount}, nil
}

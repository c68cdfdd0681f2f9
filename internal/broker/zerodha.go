package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
	"tradeverse/pkg/utils"
)

// StrategyZerodhaImport tags trades pulled in from Zerodha so they stay
// distinguishable from manual entries.
const StrategyZerodhaImport = "zerodha-import"

// ZerodhaSource imports the day's completed Zerodha orders as journal trades.
type ZerodhaSource struct {
	client        *kiteconnect.Client
	apiKey        string
	apiSecret     string
	tokenPath     string
	accessToken   string
	authenticated bool
	mu            sync.RWMutex
}

// ZerodhaConfig holds configuration for the Zerodha import source.
type ZerodhaConfig struct {
	APIKey    string
	APISecret string
	TokenPath string
}

// NewZerodhaSource creates a Zerodha import source. Any session saved on disk
// is loaded automatically.
func NewZerodhaSource(cfg ZerodhaConfig) *ZerodhaSource {
	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		homeDir, _ := os.UserHomeDir()
		tokenPath = filepath.Join(homeDir, ".config", "tradeverse", "session.json")
	}

	z := &ZerodhaSource{
		client:    kiteconnect.New(cfg.APIKey),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		tokenPath: tokenPath,
	}
	_ = z.loadSession()
	return z
}

// Name identifies the source.
func (z *ZerodhaSource) Name() string {
	return "zerodha"
}

// sessionData represents persisted session data.
type sessionData struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginURL returns the Kite Connect login URL the user must visit to obtain a
// request token.
func (z *ZerodhaSource) LoginURL() string {
	return z.client.GetLoginURL()
}

// CompleteLogin exchanges the request token for an access token and persists
// the session.
func (z *ZerodhaSource) CompleteLogin(ctx context.Context, requestToken string) error {
	session, err := z.client.GenerateSession(requestToken, z.apiSecret)
	if err != nil {
		return apperrors.NewBrokerError("login", "failed to generate session", err)
	}

	z.mu.Lock()
	z.accessToken = session.AccessToken
	z.authenticated = true
	z.client.SetAccessToken(session.AccessToken)
	z.mu.Unlock()

	return z.saveSession(session.AccessToken)
}

// Logout invalidates the session and removes it from disk.
func (z *ZerodhaSource) Logout(ctx context.Context) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.authenticated {
		if _, err := z.client.InvalidateAccessToken(); err != nil {
			return apperrors.NewBrokerError("logout", "failed to invalidate token", err)
		}
	}

	z.accessToken = ""
	z.authenticated = false

	if err := os.Remove(z.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// IsAuthenticated returns whether a valid session is loaded.
func (z *ZerodhaSource) IsAuthenticated() bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.authenticated
}

// FetchTrades pulls the day's completed orders and converts them into journal
// trades. Kite Connect only exposes current-day orders; older history has to
// come from a CSV export.
func (z *ZerodhaSource) FetchTrades(ctx context.Context) ([]models.Trade, error) {
	if !z.IsAuthenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}

	orders, err := utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (kiteconnect.Orders, error) {
		return z.client.GetOrders()
	})
	if err != nil {
		return nil, apperrors.NewBrokerError("fetch", "failed to get orders", err)
	}

	var trades []models.Trade
	for _, o := range orders {
		if o.Status != "COMPLETE" {
			continue
		}

		direction := models.Long
		if o.TransactionType == "SELL" {
			direction = models.Short
		}

		// A single fill carries no separate exit; entry and exit share the
		// order's average price and timestamp, matching how the Kite console
		// reports executions.
		price := o.AveragePrice
		ts := o.OrderTimestamp.Time
		trades = append(trades, models.Trade{
			Symbol:     o.TradingSymbol,
			Direction:  direction,
			EntryPrice: price,
			ExitPrice:  &price,
			Quantity:   o.FilledQuantity,
			EntryTime:  ts,
			ExitTime:   &ts,
			Strategy:   StrategyZerodhaImport,
			Notes:      fmt.Sprintf("order %s", o.OrderID),
		})
	}

	return trades, nil
}

func (z *ZerodhaSource) loadSession() error {
	data, err := os.ReadFile(z.tokenPath)
	if err != nil {
		return err
	}

	var session sessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return err
	}

	// Zerodha tokens expire at 6 AM IST the next day.
	if time.Now().After(session.ExpiresAt) {
		return apperrors.ErrSessionExpired
	}

	z.mu.Lock()
	z.accessToken = session.AccessToken
	z.authenticated = true
	z.client.SetAccessToken(session.AccessToken)
	z.mu.Unlock()

	return nil
}

func (z *ZerodhaSource) saveSession(accessToken string) error {
	dir := filepath.Dir(z.tokenPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	loc, _ := time.LoadLocation("Asia/Kolkata")
	now := time.Now().In(loc)
	expiresAt := time.Date(now.Year(), now.Month(), now.Day()+1, 6, 0, 0, 0, loc)

	data, err := json.Marshal(sessionData{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(z.tokenPath, data, 0600)
}

package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath is the route pattern served by WebhookHandler.
const WebhookPath = "/telegram/webhook/{secret}"

// WebhookURL is the URL registered with Telegram for baseURL and secret.
func WebhookURL(baseURL, secret string) string {
	return strings.TrimSuffix(baseURL, "/") + "/telegram/webhook/" + secret
}

// RegisterWebhook points Telegram at WebhookURL(baseURL, secret).
func (b *Bot) RegisterWebhook(baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(WebhookURL(baseURL, secret))
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	b.logger.Info("registered telegram webhook", "base_url", baseURL)
	return nil
}

// WebhookHandler accepts updates posted by Telegram. The secret path segment
// must match. Updates are acknowledged before the command runs.
func (b *Bot) WebhookHandler(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := chi.URLParam(r, "secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			http.NotFound(w, r)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			b.logger.WarnContext(r.Context(), "invalid webhook update", "error", err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		b.HandleUpdate(r.Context(), update, "webhook")
		w.WriteHeader(http.StatusOK)
	}
}

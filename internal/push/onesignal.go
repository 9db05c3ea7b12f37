// README: OneSignal push sender; best-effort delivery to a user's devices.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lani/internal/types"
)

const apiURL = "https://onesignal.com/api/v1/notifications"

// OneSignal targets devices by external user id, which the mobile apps set to
// the user's account id at login.
type OneSignal struct {
	appID  string
	apiKey string
	http   *http.Client
}

func NewOneSignal(appID, apiKey string) *OneSignal {
	return &OneSignal{
		appID:  appID,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *OneSignal) Enabled() bool { return o.appID != "" && o.apiKey != "" }

func (o *OneSignal) Push(ctx context.Context, userID types.ID, title, body string) error {
	if !o.Enabled() {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"app_id":                    o.appID,
		"include_external_user_ids": []string{string(userID)},
		"headings":                  map[string]string{"en": title},
		"contents":                  map[string]string{"en": body},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+o.apiKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("onesignal: status %d", resp.StatusCode)
	}
	return nil
}

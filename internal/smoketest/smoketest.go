// Package smoketest exercises the login and favorite restaurant endpoints of
// the delivery API and prints what came back. It asserts nothing.
package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"deliveryOps/internal/auth"
)

const (
	tokenPreviewLen = 50
	bodyPreviewLen  = 200
)

// Config selects the API and the fixed test data.
type Config struct {
	BaseURL      string
	Email        string
	Password     string
	RestaurantID int64
	Note         string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type favoriteRequest struct {
	Note string `json:"note"`
}

// Run logs in and, on success, lists favorite restaurants and adds one.
// A non-200 login ends the run without error; transport failures are returned.
func Run(ctx context.Context, cfg Config, client *http.Client, out io.Writer) error {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	status, body, err := send(ctx, client, http.MethodPost, base+"/auth/login", "", loginRequest{Email: cfg.Email, Password: cfg.Password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintf(out, "Login status: %d\n", status)
	if status != http.StatusOK {
		fmt.Fprintf(out, "Login failed: %s\n", body)
		return nil
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if lr.AccessToken == "" {
		return errors.New("login response has no accessToken")
	}
	token := lr.AccessToken
	fmt.Fprintf(out, "Token obtained: %s\n", auth.Preview(token, tokenPreviewLen))
	if claims, err := auth.Inspect(token); err == nil && claims.Role != "" {
		fmt.Fprintf(out, "Token role: %s\n", claims.Role)
	}

	status, body, err = send(ctx, client, http.MethodGet, base+"/favorites/restaurants", token, nil)
	if err != nil {
		return fmt.Errorf("list favorites: %w", err)
	}
	fmt.Fprintf(out, "\nFavorites endpoint status: %d\n", status)
	fmt.Fprintf(out, "Response: %s\n", auth.Truncate(string(body), bodyPreviewLen))

	status, body, err = send(ctx, client, http.MethodPost, fmt.Sprintf("%s/favorites/restaurants/%d", base, cfg.RestaurantID), token, favoriteRequest{Note: cfg.Note})
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	fmt.Fprintf(out, "\nAdd favorite status: %d\n", status)
	fmt.Fprintf(out, "Response: %s\n", auth.Truncate(string(body), bodyPreviewLen))
	return nil
}

// send issues one request and reads the whole response body.
func send(ctx context.Context, client *http.Client, method, url, token string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", auth.BearerHeader(token))
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

package gateway

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// The login endpoint answers with a line of text shaped like
// "Login successful: Jane Roe [DOCTOR] [42]". Role and id are pulled out
// of the bracketed suffixes; the leading text carries the display name.
var (
	loginRolePattern = regexp.MustCompile(`\[(ADMIN|DOCTOR|PHARMA_COMPANY)\]`)
	loginIDPattern   = regexp.MustCompile(`\[(\d+)\]\s*$`)
)

// ErrMalformedLogin reports a 2xx login response whose text did not carry
// the expected bracketed role and id.
var ErrMalformedLogin = errors.New("could not extract role from login response")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend and parses the credentials out
// of the confirmation text. Wrong password and unknown user come back as
// *APIError with the backend's own message.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	text, err := c.sendText(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, nil)
	if err != nil {
		return Credentials{}, err
	}
	return parseLoginText(text)
}

func parseLoginText(text string) (Credentials, error) {
	roleMatch := loginRolePattern.FindStringSubmatch(text)
	idMatch := loginIDPattern.FindStringSubmatch(text)
	if roleMatch == nil || idMatch == nil {
		return Credentials{}, ErrMalformedLogin
	}

	id, err := strconv.ParseInt(idMatch[1], 10, 64)
	if err != nil {
		return Credentials{}, ErrMalformedLogin
	}

	name := text
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}

	return Credentials{
		FullName: strings.TrimSpace(name),
		Role:     roleMatch[1],
		UserID:   id,
	}, nil
}

// Logout tells the backend the session is over. The server-side session is
// the real source of truth; a failed call here is not fatal.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.sendText(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	return err
}

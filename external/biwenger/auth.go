package biwenger

import (
	"bytes"
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
)

// Identity is the account resolved after login: who the user is and
// which private league and fantasy team the run analyses. The original
// account payload may list several leagues; the first one is used.
type Identity struct {
	UserID     int64
	UserName   string
	LeagueID   int64
	LeagueName string
	TeamID     int64
	TeamName   string
	Balance    int64
}

type loginPayload struct {
	Token string `json:"token"`
}

type accountEnvelope struct {
	Data struct {
		Account struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"account"`
		Leagues []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			User struct {
				ID      int64  `json:"id"`
				Name    string `json:"name"`
				Balance int64  `json:"balance"`
			} `json:"user"`
		} `json:"leagues"`
	} `json:"data"`
}

// Login exchanges the configured credentials for a bearer token and
// stores it on the client. A client constructed with an explicit token
// does not need to call it.
func (c *Client) Login(ctx context.Context) error {
	if c.email == "" || c.password == "" {
		return fmt.Errorf("login credentials not configured")
	}

	body, err := sonic.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("encode login payload: %w", err)
	}

	raw, err := c.executeRequest(ctx, "POST", c.appBaseURL+loginPath, bytes.NewReader(body), false)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var payload loginPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode login payload: %w", err)
	}
	if payload.Token == "" {
		return fmt.Errorf("login succeeded but the response carries no token")
	}

	c.token = payload.Token
	c.logger.InfoContext(ctx, "biwenger login succeeded")
	return nil
}

// Account fetches the user identity and, when the client was not
// configured with explicit league and user ids, adopts the first league
// of the account for subsequent authenticated calls.
func (c *Client) Account(ctx context.Context) (Identity, error) {
	var envelope accountEnvelope
	if _, err := c.doJSON(ctx, c.appBaseURL+accountPath, true, &envelope); err != nil {
		return Identity{}, fmt.Errorf("fetch account: %w", err)
	}
	if len(envelope.Data.Leagues) == 0 {
		return Identity{}, fmt.Errorf("account has no leagues")
	}

	league := envelope.Data.Leagues[0]
	identity := Identity{
		UserID:     envelope.Data.Account.ID,
		UserName:   envelope.Data.Account.Name,
		LeagueID:   league.ID,
		LeagueName: league.Name,
		TeamID:     league.User.ID,
		TeamName:   league.User.Name,
		Balance:    league.User.Balance,
	}

	if c.leagueID == 0 {
		c.leagueID = identity.LeagueID
	}
	if c.userID == 0 {
		c.userID = identity.TeamID
	}

	c.logger.InfoContext(ctx, "biwenger account resolved",
		"league", identity.LeagueName, "team", identity.TeamName)
	return identity, nil
}

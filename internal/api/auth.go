package api

import (
	"context"
	"errors"

	"github.com/mmcdole/huddle/internal/domain"
)

type authRequest struct {
	Action        string `json:"action"`
	Username      string `json:"username,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Password      string `json:"password"`
	FullName      string `json:"full_name,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	AgeConfirmed  bool   `json:"age_confirmed,omitempty"`
	TermsAccepted bool   `json:"terms_accepted,omitempty"`
}

// Authenticate logs in or registers. Every failure is reported as
// *domain.AuthError wrapping the underlying cause.
func (c *Client) Authenticate(ctx context.Context, mode domain.AuthMode, creds domain.Credentials) (*domain.Session, error) {
	req := authRequest{
		Action:   string(mode),
		Username: creds.Username,
		Phone:    creds.Phone,
		Password: creds.Password,
	}
	if mode == domain.ModeRegister {
		req.Email = creds.Email
		req.FullName = creds.FullName
		req.AgeConfirmed = creds.AgeConfirmed
		req.TermsAccepted = creds.AgeConfirmed
		if !creds.BirthDate.IsZero() {
			req.BirthDate = creds.BirthDate.Format("2006-01-02")
		}
	}

	var dto SessionDTO
	if err := c.post(ctx, "auth "+string(mode), c.endpoints.Auth, req, &dto); err != nil {
		var nerr *domain.NetworkError
		if errors.As(err, &nerr) && nerr.Message != "" {
			return nil, &domain.AuthError{Reason: nerr.Message, Err: err}
		}
		return nil, &domain.AuthError{Err: err}
	}
	if dto.ID == 0 {
		return nil, &domain.AuthError{Reason: "response did not include a user id"}
	}

	c.logger.Info("authenticated", "mode", mode, "user_id", int64(dto.ID))
	return MapSession(dto), nil
}

package client

import (
	"context"
	"errors"
	"strings"

	"github.com/tajious/parkify/internal/models"
)

var ErrMissingFields = errors.New("Please fill in all fields")

// Registration is the second sign-up step. Email and password come from the
// first step through the session.
type Registration struct {
	client  *Client
	session *Storage

	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

func NewRegistration(client *Client, session *Storage) *Registration {
	return &Registration{
		client:   client,
		session:  session,
		Email:    session.Get(KeyUserEmail),
		Password: session.Get(KeyUserPassword),
	}
}

// Submit creates the account and signs the user in. Navigation is up to the caller.
func (r *Registration) Submit(ctx context.Context) (*models.User, error) {
	for _, v := range []string{r.Email, r.Password, r.FirstName, r.LastName, r.PhoneNumber} {
		if strings.TrimSpace(v) == "" {
			return nil, ErrMissingFields
		}
	}

	res, err := r.client.Register(ctx, models.RegisterRequest{
		Email:       r.Email,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	r.session.setUint(KeyUserID, res.User.ID)
	r.session.Set(KeyUserToken, res.Token)
	r.session.Delete(KeyUserEmail, KeyUserPassword)
	r.Password = ""
	return &res.User, nil
}

package client

import (
	"context"
	"errors"
	"sync"

	"github.com/tajious/parkify/internal/models"
)

// PasswordMask stands in for the stored password until it is verified.
const PasswordMask = "******"

var (
	ErrNoLessorSession = errors.New("no lessor signed in")
	ErrPasswordLocked  = errors.New("verify your current password before changing it")
	ErrUnknownField    = errors.New("unknown profile field")
)

// Editable field names, as the form posts them.
const (
	FieldFirstName   = "lessor_firstname"
	FieldLastName    = "lessor_lastname"
	FieldPhoneNumber = "lessor_phone_number"
	FieldEmail       = "lessor_email"
	FieldPassword    = "lessor_password"
)

// LessorProfile is the lessor profile editor.
type LessorProfile struct {
	client  *Client
	session *Storage

	mu            sync.Mutex
	id            uint
	token         string
	fields        map[string]string
	passwordToken string
}

func NewLessorProfile(client *Client, session *Storage) *LessorProfile {
	return &LessorProfile{
		client:  client,
		session: session,
		fields:  make(map[string]string),
	}
}

// Load fetches the profile of the signed-in lessor. ErrNoLessorSession means the
// page should send the visitor to the login page.
func (p *LessorProfile) Load(ctx context.Context) error {
	id := p.session.getUint(KeyLessorID)
	token := p.session.Get(KeyLessorToken)
	if id == 0 || token == "" {
		return ErrNoLessorSession
	}

	lessor, err := p.client.GetLessor(ctx, token, id)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.id = id
	p.token = token
	p.passwordToken = ""
	p.fields = map[string]string{
		FieldFirstName:   lessor.FirstName,
		FieldLastName:    lessor.LastName,
		FieldPhoneNumber: lessor.PhoneNumber,
		FieldEmail:       lessor.Email,
		FieldPassword:    PasswordMask,
	}
	return nil
}

func (p *LessorProfile) Field(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fields[name]
}

func (p *LessorProfile) PasswordEditable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passwordToken != ""
}

func (p *LessorProfile) Set(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case FieldFirstName, FieldLastName, FieldPhoneNumber, FieldEmail:
	case FieldPassword:
		if p.passwordToken == "" {
			return ErrPasswordLocked
		}
	default:
		return ErrUnknownField
	}
	p.fields[name] = value
	return nil
}

// VerifyPassword unlocks the password field for a few minutes.
func (p *LessorProfile) VerifyPassword(ctx context.Context, current string) error {
	p.mu.Lock()
	id, token := p.id, p.token
	p.mu.Unlock()
	if id == 0 {
		return ErrNoLessorSession
	}

	grant, err := p.client.VerifyLessorPassword(ctx, token, id, current)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwordToken = grant
	p.fields[FieldPassword] = ""
	return nil
}

// Save sends the whole form. The password goes along only once it was unlocked and changed.
func (p *LessorProfile) Save(ctx context.Context) (*models.Lessor, error) {
	p.mu.Lock()
	if p.id == 0 {
		p.mu.Unlock()
		return nil, ErrNoLessorSession
	}
	id, token, grant := p.id, p.token, p.passwordToken
	req := models.UpdateLessorRequest{
		FirstName:   p.fields[FieldFirstName],
		LastName:    p.fields[FieldLastName],
		PhoneNumber: p.fields[FieldPhoneNumber],
		Email:       p.fields[FieldEmail],
	}
	if pw := p.fields[FieldPassword]; grant != "" && pw != "" && pw != PasswordMask {
		req.Password = pw
	}
	p.mu.Unlock()

	lessor, err := p.client.UpdateLessor(ctx, token, id, req, grant)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwordToken = ""
	p.fields[FieldPassword] = PasswordMask
	return lessor, nil
}

// Delete removes the account and signs the lessor out.
func (p *LessorProfile) Delete(ctx context.Context) error {
	p.mu.Lock()
	id, token := p.id, p.token
	p.mu.Unlock()
	if id == 0 {
		return ErrNoLessorSession
	}

	if err := p.client.DeleteLessor(ctx, token, id); err != nil {
		return err
	}

	p.session.Delete(KeyLessorID, KeyLessorToken)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.id, p.token, p.passwordToken = 0, "", ""
	p.fields = make(map[string]string)
	return nil
}

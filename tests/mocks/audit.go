package mocks

import (
	"context"
	"sync"

	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

// RecordingAudit guarda los intentos de login registrados.
type RecordingAudit struct {
	mu       sync.Mutex
	Attempts []userDomain.LoginAttempt
}

func (a *RecordingAudit) RecordLogin(ctx context.Context, attempt userDomain.LoginAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Attempts = append(a.Attempts, attempt)
	return nil
}

// Last devuelve el último intento registrado, o nil si no hay ninguno.
func (a *RecordingAudit) Last() *userDomain.LoginAttempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Attempts) == 0 {
		return nil
	}
	last := a.Attempts[len(a.Attempts)-1]
	return &last
}

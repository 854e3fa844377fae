package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionMissing means no authenticated identity is attached to the request.
	ErrSessionMissing = errors.New("session missing")
	ErrNotFound       = errors.New("not found")
	// ErrAccessDenied is returned when a record outside the caller's family is referenced.
	ErrAccessDenied = errors.New("access denied")
)

// ProvisioningError reports a failure to create or read the caller's profile and family.
type ProvisioningError struct {
	UserID string
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning profile %s: %v", e.UserID, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// DataFetchError wraps a failed category or transaction read.
type DataFetchError struct {
	Op  string
	Err error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Op, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// ValidationError is a rejected user input. It never reaches a backend.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MutationError wraps a failed insert or delete.
type MutationError struct {
	Op  string // "insert" or "delete"
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s transaction %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s transaction: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// UserMessage turns an error into the short text shown in the error banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		switch {
		case errors.Is(ve.Err, ErrInvalidAmount):
			return "Valor inválido"
		case errors.Is(ve.Err, ErrInvalidDate):
			return "Data inválida"
		case errors.Is(ve.Err, ErrEmptyCategory):
			return "Selecione uma categoria"
		case errors.Is(ve.Err, ErrDescriptionLen):
			return "Descrição muito longa"
		case errors.Is(ve.Err, ErrInvalidPaymentMethod):
			return "Forma de pagamento inválida"
		}
		return "Dados inválidos: " + ve.Err.Error()
	case errors.Is(err, ErrSessionMissing):
		return "Sessão expirada, entre novamente"
	case errors.Is(err, ErrNotFound):
		return "Registro não encontrado"
	case errors.Is(err, ErrAccessDenied):
		return "Acesso negado"
	}
	var pe *ProvisioningError
	if errors.As(err, &pe) {
		return "Não foi possível preparar sua conta: " + pe.Err.Error()
	}
	var de *DataFetchError
	if errors.As(err, &de) {
		return "Erro ao carregar dados: " + de.Err.Error()
	}
	var me *MutationError
	if errors.As(err, &me) {
		if me.Op == "delete" {
			return "Erro ao excluir: " + me.Err.Error()
		}
		return "Erro ao salvar: " + me.Err.Error()
	}
	return err.Error()
}

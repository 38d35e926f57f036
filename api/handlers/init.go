package handlers

import (
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/repository"
)

type APIHandlers struct {
	Accounts *AccountsHandler
	Imports  *ImportsHandler
}

func InitHandlers(repos *repository.Repositories, ingestion interfaces.IngestionService) *APIHandlers {
	return &APIHandlers{
		Accounts: NewAccountsHandler(repos, ingestion),
		Imports:  NewImportsHandler(repos),
	}
}

package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("input validation failed")
	ErrMissingFields         = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrUnknownDatasource     = fmt.Errorf("%w: unknown datasource", ErrValidation)
	ErrUnsupportedSubproduct = fmt.Errorf("%w: unsupported subproduct for datasource", ErrValidation)

	ErrConnectorNotFound  = errors.New("connector not found")
	ErrChatbotNotFound    = errors.New("chatbot not found")
	ErrUnsupportedSource  = errors.New("unsupported datasource")
	ErrConnectorUnsealing = errors.New("connector config could not be decrypted")
)

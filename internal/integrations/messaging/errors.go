package messaging

import "errors"

var (
	// ErrNoContact возвращается, когда у получателя нет ни телефона, ни email
	ErrNoContact = errors.New("messaging client: recipient has no contact")

	// ErrInvalidRecipient возвращается, когда провайдер отклонил адресата
	ErrInvalidRecipient = errors.New("messaging client: invalid recipient")

	// ErrRateLimited возвращается при превышении лимита провайдера
	ErrRateLimited = errors.New("messaging client: rate limited by provider")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("messaging client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("messaging client: invalid response")
)

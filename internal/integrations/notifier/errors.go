package notifier

import "errors"

var (
	// ErrInvalidEvent возвращается при попытке отправить событие без записи или типа
	ErrInvalidEvent = errors.New("notifier: invalid event")

	// ErrPublish возвращается, если сообщение не удалось поставить в очередь
	ErrPublish = errors.New("notifier: failed to publish event")
)

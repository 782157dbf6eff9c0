package eventbus

import "errors"

var (
	// ErrEncode возвращается при ошибке сериализации события
	ErrEncode = errors.New("eventbus: failed to encode event")

	// ErrPublish возвращается при ошибке отправки события в Kafka
	ErrPublish = errors.New("eventbus: failed to publish event")
)

package services

// Broadcaster — минимальный контракт рассылки live-сообщений по комнатам.
// Его реализует scoring.Hub; в тестах подменяется фейком.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

package repo

// UserContextStore абстракция для хранения контекста пользователя (последний email входа).
type UserContextStore interface {
	SaveLogin(email string) error
	LoadLogin() (string, error)
}

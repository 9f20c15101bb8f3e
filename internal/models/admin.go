package models

// Admin - учетная запись диспетчера. Пароль хранится открытым текстом,
// это осознанное ограничение прототипа (см. DESIGN.md): клиент сверяет
// тот же секрет локально и шлет его заголовком на каждый запрос.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

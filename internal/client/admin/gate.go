package admin

import (
	"sync"
)

// View - активный экран клиента
type View int

const (
	ViewUser View = iota
	ViewAdmin
)

// Общий секрет панели, зашит на клиенте и сверяется локально.
// Известная слабость прототипа: правильное решение - серверный
// сеансовый токен (см. DESIGN.md), здесь сознательно сохранен
// контракт исходной системы.
const sharedSecret = "police123"

// Gate - клиентский шлюз диспетчерской панели: хранит активный экран
// и флаг аутентификации. Ничего не персистится и не создается на
// сервере; после перезапуска клиента состояние чистое.
type Gate struct {
	mu            sync.Mutex
	view          View
	authenticated bool
}

func NewGate() *Gate {
	return &Gate{view: ViewUser}
}

// AttemptLogin сравнивает введенный секрет с общим. Совпадение
// открывает панель; неверный ввод ничего не меняет и не
// ограничивается по числу попыток.
func (g *Gate) AttemptLogin(secret string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if secret != sharedSecret {
		return false
	}
	g.view = ViewAdmin
	g.authenticated = true
	return true
}

// Logout закрывает панель и сбрасывает аутентификацию.
// На сервере инвалидировать нечего - там ничего не создавалось.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.view = ViewUser
	g.authenticated = false
}

// View возвращает активный экран
func (g *Gate) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Authenticated сообщает, открыт ли доступ к панели
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// Secret возвращает общий секрет для заголовка admin-secret:
// панель предъявляет его на каждом запросе ленты
func (g *Gate) Secret() string {
	return sharedSecret
}

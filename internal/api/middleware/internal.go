package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

// InternalTokenHeader заголовок с общим секретом для вызовов от платежного сервиса и планировщика
const InternalTokenHeader = "X-Internal-Token"

const (
	msgInternalDisabled = "внутренние маршруты отключены"
	msgInvalidToken     = "неверный внутренний токен"
)

// InternalOnly пропускает запрос только с верным X-Internal-Token.
// Пустой token закрывает внутренние маршруты целиком.
func InternalOnly(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				handlers.RespondForbidden(w, msgInternalDisabled)
				return
			}

			got := []byte(r.Header.Get(InternalTokenHeader))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"example.com/checkout-coordinator/pkg/logger"
)

// Ключи Gin контекста с данными принципала.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// IdentityClaims — ожидаемые claims токена внешнего identity provider.
type IdentityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity — middleware валидации токенов внешнего identity provider.
// Координатор не выпускает токены сам: проверяется только подпись (HS256),
// срок действия и издатель.
type Identity struct {
	secret []byte
	issuer string
}

// NewIdentity создаёт middleware аутентификации.
func NewIdentity(secret, issuer string) *Identity {
	return &Identity{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Handle возвращает Gin handler function для middleware.
func (m *Identity) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		token := extractBearerToken(c)
		if token == "" {
			log.Debug().Msg("Отсутствует токен авторизации")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Требуется авторизация",
			})
			return
		}

		claims := &IdentityClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
		if err != nil || !parsed.Valid {
			log.Warn().Err(err).Msg("Невалидный токен")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Токен недействителен",
			})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		log.Debug().
			Str("user_id", claims.Subject).
			Str("role", claims.Role).
			Msg("Пользователь аутентифицирован")

		c.Next()
	}
}

// extractBearerToken извлекает токен из заголовка Authorization.
// Схема Bearer регистронезависима.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

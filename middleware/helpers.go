package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

var ErrNoClaims = errors.New("user claims not found in context")

// Claims - проверенные данные пользователя из токена.
type Claims struct {
	UserID int
	Role   models.UserRole
}

// claimsFromJWT разбирает user_id (число или строка) и role из MapClaims.
func claimsFromJWT(mc jwt.MapClaims) (Claims, error) {
	userID, err := parseUserID(mc[jwtClaimUserID])
	if err != nil {
		return Claims{}, err
	}

	roleStr, ok := mc[jwtClaimRole].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing or non-string '%s' claim", jwtClaimRole)
	}
	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleParticipant:
	default:
		return Claims{}, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	return Claims{UserID: userID, Role: role}, nil
}

func parseUserID(raw interface{}) (int, error) {
	var id int
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		id = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("'%s' claim is not an integer: %q", jwtClaimUserID, v)
		}
		id = n
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", jwtClaimUserID, raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, id)
	}
	return id, nil
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(userContextKey).(Claims)
	if !ok {
		return Claims{}, ErrNoClaims
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

package hostbridge

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// LaunchClaims is the payload of a launcher-issued token.
type LaunchClaims struct {
	jwt.RegisteredClaims
	User        User   `json:"user"`
	ColorScheme string `json:"color_scheme,omitempty"`
	StartParam  string `json:"start_param,omitempty"`
}

// IssueLaunchToken signs an HS256 token describing user.
func IssueLaunchToken(user User, colorScheme string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, LaunchClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		User:        user,
		ColorScheme: colorScheme,
	})

	return token.SignedString(secretKey)
}

// ParseLaunchToken verifies tokenString and returns the launch it describes.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func ParseLaunchToken(tokenString string, secretKey []byte) (*Launch, error) {
	claims := &LaunchClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.User.ID <= 0 {
		return nil, common.ErrInvalidToken
	}

	launch := &Launch{
		User:        &claims.User,
		ColorScheme: claims.ColorScheme,
		StartParam:  claims.StartParam,
	}
	if claims.IssuedAt != nil {
		launch.AuthDate = claims.IssuedAt.Time
	}
	return launch, nil
}

package hostbridge

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	ErrInvalidInitData = errors.New("invalid init data")
	ErrInitDataExpired = errors.New("init data expired")
)

// Launch is what a launch source tells about the session.
type Launch struct {
	User        *User
	ColorScheme string
	StartParam  string
	AuthDate    time.Time
}

// ParseInitData validates the host's init data query string signed with the
// bot token and decodes it. maxAge <= 0 disables the freshness check, which
// is made against now rather than the wall clock.
func ParseInitData(raw, botToken string, maxAge time.Duration, now time.Time) (*Launch, error) {
	if botToken == "" {
		return nil, ErrInvalidInitData
	}
	if err := initdata.Validate(raw, botToken, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	authDate := time.Unix(int64(data.AuthDateRaw), 0)
	if maxAge > 0 && now.Sub(authDate) > maxAge {
		return nil, ErrInitDataExpired
	}

	launch := &Launch{AuthDate: authDate, StartParam: data.StartParam}
	if data.User.ID != 0 {
		launch.User = &User{
			ID:           data.User.ID,
			FirstName:    data.User.FirstName,
			LastName:     data.User.LastName,
			Username:     data.User.Username,
			LanguageCode: data.User.LanguageCode,
			PhotoURL:     data.User.PhotoURL,
			IsPremium:    data.User.IsPremium,
		}
	}
	return launch, nil
}

// SignInitData returns values encoded with a valid hash for botToken, signed
// at their auth_date. It is the inverse of ParseInitData and is used by
// launchers and tests.
func SignInitData(values url.Values, botToken string) string {
	authUnix, _ := strconv.ParseInt(values.Get("auth_date"), 10, 64)

	payload := make(map[string]string, len(values))
	signed := url.Values{}
	for k := range values {
		if k == "hash" {
			continue
		}
		payload[k] = values.Get(k)
		signed.Set(k, values.Get(k))
	}
	signed.Set("auth_date", strconv.FormatInt(authUnix, 10))
	signed.Set("hash", initdata.Sign(payload, botToken, time.Unix(authUnix, 0)))
	return signed.Encode()
}

package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

var messages = map[string]map[string]string{
	"en": {
		"malformed":   "Could not understand the AI answer. Try rephrasing.",
		"service":     "The AI service could not handle this request.",
		"unavailable": "The AI service is unavailable. Try again later.",
		"unknown":     "Something went wrong.",
	},
	"ru": {
		"malformed":   "Не удалось разобрать ответ ИИ. Попробуйте сформулировать иначе.",
		"service":     "Сервис ИИ не смог обработать запрос.",
		"unavailable": "Сервис ИИ недоступен. Попробуйте позже.",
		"unknown":     "Что-то пошло не так.",
	},
}

// UserMessage returns a short localized message for an AI error. Unknown
// languages fall back to English.
func UserMessage(err error, lang string) string {
	table, ok := messages[strings.ToLower(lang)]
	if !ok {
		table = messages["en"]
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedResponse):
		return table["malformed"]
	case errors.Is(err, ErrService):
		return table["service"]
	case errors.Is(err, common.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return table["unavailable"]
	default:
		return table["unknown"]
	}
}

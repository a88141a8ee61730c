package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength          = 2
	MaxNameLength          = 100
	MaxBusinessNameLength  = 200
	MaxBusinessURLLength   = 500
	MinReviewContentLength = 10
	MaxReviewContentLength = 3000
)

// Паттерны ссылок Google Maps. Достаточно совпадения любого из них
// (без учёта регистра), остальные URL отклоняются.
var businessURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)maps\.google\.`),
	regexp.MustCompile(`(?i)google\.[a-z]+/maps`),
	regexp.MustCompile(`(?i)goo\.gl/maps`),
	regexp.MustCompile(`(?i)maps\.app\.goo\.gl`),
}

// ValidateBusinessURL проверяет, что ссылка ведёт на карточку бизнеса в Google Maps.
func ValidateBusinessURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("ссылка на бизнес обязательна")
	}
	if utf8.RuneCountInString(rawURL) > MaxBusinessURLLength {
		return fmt.Errorf("ссылка на бизнес должна быть не более %d символов", MaxBusinessURLLength)
	}

	for _, pattern := range businessURLPatterns {
		if pattern.MatchString(rawURL) {
			return nil
		}
	}

	return fmt.Errorf("ссылка должна вести на карточку бизнеса в Google Maps")
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateName проверяет отображаемое имя пользователя.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("имя обязательно")
	}
	return ValidateLength("имя", strings.TrimSpace(name), MinNameLength, MaxNameLength)
}

// ValidateReviewContent проверяет текст отзыва в подтверждении задания.
func ValidateReviewContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("текст отзыва не может быть пустым")
	}
	return ValidateLength("текст отзыва", strings.TrimSpace(content), MinReviewContentLength, MaxReviewContentLength)
}

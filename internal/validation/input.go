package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hewor/agency-backend/internal/models"
)

// Константы валидации
const (
	MinUsernameLength         = 3
	MaxUsernameLength         = 30
	MinOrderTitleLength       = 3
	MaxOrderTitleLength       = 200
	MinOrderDescriptionLength = 10
	MaxOrderDescriptionLength = 5000
	MinMessageLength          = 1
	MaxMessageLength          = 5000
	MaxFreelancerNameLength   = 100
	MaxFreelancerCodeLength   = 20
	MaxPhoneLength            = 15
	MaxPaymentAmount          = 10000000.0 // 10 миллионов
)

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

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры, точку и подчеркивание")
	}

	return nil
}

// ValidateOrderTitle проверяет заголовок заказа.
func ValidateOrderTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок заказа обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок заказа", title, MinOrderTitleLength, MaxOrderTitleLength)
}

// ValidateOrderDescription проверяет описание заказа.
func ValidateOrderDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание заказа обязательно")
	}

	description = strings.TrimSpace(description)

	return ValidateLength("описание заказа", description, MinOrderDescriptionLength, MaxOrderDescriptionLength)
}

// ValidateServiceType проверяет тип услуги.
func ValidateServiceType(serviceType string) error {
	if _, ok := models.ValidServiceTypes[serviceType]; !ok {
		return fmt.Errorf("некорректный тип услуги %q", serviceType)
	}
	return nil
}

// ValidatePhone проверяет телефонный номер.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("телефон обязателен")
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return fmt.Errorf("телефон должен быть не более %d символов", MaxPhoneLength)
	}

	phoneRegex := regexp.MustCompile(`^\+?[0-9 \-()]+$`)
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("телефон содержит недопустимые символы")
	}
	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateFreelancerCode проверяет код исполнителя.
func ValidateFreelancerCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("код исполнителя обязателен")
	}
	if utf8.RuneCountInString(code) > MaxFreelancerCodeLength {
		return fmt.Errorf("код исполнителя должен быть не более %d символов", MaxFreelancerCodeLength)
	}

	codeRegex := regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
	if !codeRegex.MatchString(code) {
		return fmt.Errorf("код исполнителя может содержать только буквы, цифры и дефис")
	}
	return nil
}

// ParseAmount разбирает сумму оплаты из строки формы.
// Некорректный ввод отклоняется до какой-либо мутации состояния.
func ParseAmount(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("некорректный формат суммы %q", raw)
	}

	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return &amount, nil
}

// ValidateAmount проверяет сумму оплаты исполнителю.
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("сумма оплаты не может быть отрицательной")
	}
	if amount > MaxPaymentAmount {
		return fmt.Errorf("сумма оплаты не может превышать %.0f", MaxPaymentAmount)
	}
	return nil
}

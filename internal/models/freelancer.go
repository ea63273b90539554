package models

import (
	"time"

	"github.com/google/uuid"
)

// Freelancer описывает внешнего исполнителя, которому можно назначать заказы.
// Удаление исполнителя не трогает заказы: они хранят историческую ссылку,
// пока админ не переназначит или не снимет её явно.
type Freelancer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Profession     *string   `db:"profession" json:"profession,omitempty"`
	Expertise      *string   `db:"expertise" json:"expertise,omitempty"`
	PaymentDetails *string   `db:"payment_details" json:"payment_details,omitempty"`
	ProfileImage   *string   `db:"profile_image" json:"profile_image,omitempty"`
	QRCode         *string   `db:"qr_code" json:"qr_code,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

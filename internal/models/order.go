package models

import (
	"time"

	"github.com/google/uuid"
)

// Order описывает заказ клиента на услугу агентства.
//
// Файловые поля устроены двумя способами намеренно: пять именованных слотов
// (исходник клиента, файл поставки, роадмап исполнителя, два скриншота оплаты)
// живут прямо в строке заказа, а неограниченный набор вспомогательных файлов —
// отдельными записями OrderFile. Слоты несут семантику роли, коллекция — нет.
type Order struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	ServiceType string    `db:"service_type" json:"service_type"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	RequestCall bool      `db:"request_call" json:"request_call"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number,omitempty"`
	Status      string    `db:"status" json:"status"`

	// Загрузка клиента и поставка.
	FileUpload      *string `db:"file_upload" json:"file_upload,omitempty"`
	DeliveryFile    *string `db:"delivery_file" json:"delivery_file,omitempty"`
	DeliveryMessage *string `db:"delivery_message" json:"delivery_message,omitempty"`

	// Оплата клиентом.
	IsPaid            bool    `db:"is_paid" json:"is_paid"`
	TransactionID     *string `db:"transaction_id" json:"transaction_id,omitempty"`
	PaymentScreenshot *string `db:"payment_screenshot" json:"payment_screenshot,omitempty"`

	// Назначение исполнителя. Поля значимы только при непустом FreelancerID;
	// снятие исполнителя обязано их очистить.
	FreelancerID                *uuid.UUID `db:"freelancer_id" json:"freelancer_id,omitempty"`
	FreelancerStatus            string     `db:"freelancer_status" json:"freelancer_status"`
	AssignedAt                  *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	FreelancerDeadline          *time.Time `db:"freelancer_deadline" json:"freelancer_deadline,omitempty"`
	FreelancerPayment           *float64   `db:"freelancer_payment" json:"freelancer_payment,omitempty"`
	IsFreelancerPaid            bool       `db:"is_freelancer_paid" json:"is_freelancer_paid"`
	FreelancerTransactionID     *string    `db:"freelancer_transaction_id" json:"freelancer_transaction_id,omitempty"`
	FreelancerPaymentScreenshot *string    `db:"freelancer_payment_screenshot" json:"freelancer_payment_screenshot,omitempty"`
	FreelancerRoadmap           *string    `db:"freelancer_roadmap" json:"freelancer_roadmap,omitempty"`
	FreelancerDescription       *string    `db:"freelancer_description" json:"freelancer_description,omitempty"`

	// CompletedAt заполнен тогда и только тогда, когда Status == completed.
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Files []OrderFile `json:"files,omitempty"`
}

// OrderFile описывает вспомогательный файл, прикреплённый к заказу.
type OrderFile struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OrderID      uuid.UUID `db:"order_id" json:"order_id"`
	FilePath     string    `db:"file_path" json:"file_path"`
	FileType     string    `db:"file_type" json:"file_type"`
	OriginalName string    `db:"original_name" json:"original_name"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

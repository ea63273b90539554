package models

// OrderStatus константы статусов заказов.
const (
	OrderStatusPending    = "pending"
	OrderStatusContacted  = "contacted"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// FreelancerStatus константы статусов назначения исполнителя.
const (
	FreelancerStatusUnassigned        = "unassigned"
	FreelancerStatusPendingAcceptance = "pending_acceptance"
	FreelancerStatusAccepted          = "accepted"
	FreelancerStatusRejected          = "rejected"
	FreelancerStatusTimeout           = "timeout"
)

// ServiceType константы типов услуг.
const (
	ServiceTypePresentation = "presentation"
	ServiceTypeBookTyping   = "book_typing"
	ServiceTypeConsultation = "consultation"
	ServiceTypeWebScraping  = "web_scraping"
	ServiceTypeDataEntry    = "data_entry"
	ServiceTypeOther        = "other"
)

// FileType константы ролей файлов заказа.
const (
	FileTypeSource           = "source"
	FileTypeDelivery         = "delivery"
	FileTypeFreelancerUpload = "freelancer_upload"
)

// ChatChannel константы каналов переписки по заказу.
const (
	ChatChannelClient     = "client"
	ChatChannelFreelancer = "freelancer"
)

// Role константы ролей пользователей.
const (
	RoleClient     = "client"
	RoleAdmin      = "admin"
	RoleFreelancer = "freelancer"
)

// ValidOrderStatuses список валидных статусов заказов.
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusContacted:  {},
	OrderStatusInProgress: {},
	OrderStatusCompleted:  {},
}

// OrderStatusRank задаёт порядок статусов: переходы разрешены только вперёд.
var OrderStatusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusContacted:  1,
	OrderStatusInProgress: 2,
	OrderStatusCompleted:  3,
}

// ValidFreelancerStatuses список валидных статусов назначения.
var ValidFreelancerStatuses = map[string]struct{}{
	FreelancerStatusUnassigned:        {},
	FreelancerStatusPendingAcceptance: {},
	FreelancerStatusAccepted:          {},
	FreelancerStatusRejected:          {},
	FreelancerStatusTimeout:           {},
}

// ValidServiceTypes список валидных типов услуг.
var ValidServiceTypes = map[string]struct{}{
	ServiceTypePresentation: {},
	ServiceTypeBookTyping:   {},
	ServiceTypeConsultation: {},
	ServiceTypeWebScraping:  {},
	ServiceTypeDataEntry:    {},
	ServiceTypeOther:        {},
}

// ValidFileTypes список валидных ролей файлов.
var ValidFileTypes = map[string]struct{}{
	FileTypeSource:           {},
	FileTypeDelivery:         {},
	FileTypeFreelancerUpload: {},
}

// ValidChatChannels список валидных каналов переписки.
var ValidChatChannels = map[string]struct{}{
	ChatChannelClient:     {},
	ChatChannelFreelancer: {},
}

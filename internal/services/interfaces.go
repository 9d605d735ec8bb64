package services

import (
	"gorm.io/gorm"

	"jbcnews/internal/models"
	"jbcnews/internal/pagination"
)

// RegistrationInput carries the fields collected by the chat registration flow.
// PasswordHash is already a bcrypt hash; the plaintext never reaches this layer.
type RegistrationInput struct {
	ChatID       int64
	TelegramID   int64
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Location     string
	CountryID    string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	RegisterFromChat(in RegistrationInput) (*models.User, error)
	UsernameTaken(username string) (bool, error)
	EmailTaken(email string) (bool, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// StaffServicer defines the contract for staff profile management.
type StaffServicer interface {
	Promote(userID string, role models.Role, department string) (*models.Staff, error)
	GetByUserID(userID string) (*models.Staff, error)
}

// CountryServicer defines the contract for country reference data.
type CountryServicer interface {
	List() ([]models.Country, error)
	GetByID(id string) (*models.Country, error)
	GetByCode(code string) (*models.Country, error)
}

// CategoryServicer defines the contract for news categories.
type CategoryServicer interface {
	List() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	ResolveCategory(tx *gorm.DB, name string) (*models.Category, error)
}

// NewsFilter holds optional filter parameters for listing articles.
type NewsFilter struct {
	CountryID    string
	CategoryID   string
	BreakingOnly bool
}

// ArticleInput is a staff-authored article ready to be stored.
type ArticleInput struct {
	Title      string
	Summary    string
	Content    string
	CategoryID string
}

// NewsServicer defines the contract for article storage and lookup.
type NewsServicer interface {
	Exists(tx *gorm.DB, sourceURL, title string) (bool, error)
	Create(tx *gorm.DB, news *models.News) error
	CreateStaffArticle(author *models.User, in ArticleInput) (*models.News, error)
	GetByID(id string) (*models.News, error)
	List(filter NewsFilter, page pagination.PageRequest) (*pagination.PageResponse[models.News], error)
	Latest(filter NewsFilter, limit int) ([]models.News, error)
	SetPublished(id string, published bool) (*models.News, error)
	MarkBreaking(id string) (*models.News, error)
	SetTranslations(id string, translations models.Translations) error
}

// TicketServicer defines the contract for support tickets.
type TicketServicer interface {
	Create(userID, subject, message string) (*models.SupportTicket, error)
	GetByTicketID(ticketID string) (*models.SupportTicket, error)
	ListForUser(userID string, limit int) ([]models.SupportTicket, error)
	List(status *models.TicketStatus, page pagination.PageRequest) (*pagination.PageResponse[models.SupportTicket], error)
	AddResponse(ticketID, responderID, message string) (*models.SupportResponse, error)
	UpdateStatus(ticketID string, status models.TicketStatus) (*models.SupportTicket, error)
}

// SessionServicer defines the contract for persisted chat sessions.
type SessionServicer interface {
	Ensure(chatID int64) (*models.ChatSession, error)
	Get(chatID int64) (*models.ChatSession, error)
	SaveStep(chatID int64, flow, step string, draft any) error
	ClearFlow(chatID int64) error
	SetActive(chatID int64, active bool) error
	Recipients() ([]models.ChatSession, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}

// Stats is a point-in-time snapshot of the site.
type Stats struct {
	Users       int64 `json:"users"`
	Articles    int64 `json:"articles"`
	Published   int64 `json:"published"`
	Breaking    int64 `json:"breaking"`
	OpenTickets int64 `json:"open_tickets"`
}

// StatsServicer defines the contract for site statistics.
type StatsServicer interface {
	Snapshot() (*Stats, error)
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"jbcnews/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCountry creates a country with the given ISO code.
func CreateTestCountry(t *testing.T, db *gorm.DB, code string) *models.Country {
	t.Helper()

	country := &models.Country{
		Name:     fmt.Sprintf("Country %s %d", code, nextID()),
		Code:     code,
		Timezone: "UTC",
	}
	if err := db.Create(country).Error; err != nil {
		t.Fatalf("failed to create test country: %v", err)
	}
	return country
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestUser creates a reader account with a hashed password and unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleUser, nil)
}

// CreateTestUserWithRole creates an account with the given role, optionally in a country.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role, countryID *string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username:  fmt.Sprintf("user%d", n),
		Email:     fmt.Sprintf("user%d@test.com", n),
		Password:  string(hash),
		Role:      role,
		CountryID: countryID,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSession creates a chat session, linked and registered when user is non-nil.
func CreateTestSession(t *testing.T, db *gorm.DB, user *models.User) *models.ChatSession {
	t.Helper()

	session := &models.ChatSession{
		ChatID:   1000 + nextID(),
		IsActive: true,
	}
	if user != nil {
		session.UserID = &user.ID
		session.Registered = true
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

// CreateTestNews creates a published article in the given country and category.
func CreateTestNews(t *testing.T, db *gorm.DB, countryID, categoryID *string) *models.News {
	t.Helper()

	n := nextID()
	url := fmt.Sprintf("https://news.test/article-%d", n)
	news := &models.News{
		Title:        fmt.Sprintf("Test headline %d", n),
		Summary:      "Test summary",
		SourceURL:    &url,
		CountryID:    countryID,
		CategoryID:   categoryID,
		IsPublished:  true,
		PublishedAt:  time.Now().Add(time.Duration(n) * time.Second),
		Translations: datatypes.NewJSONType(models.Translations{}),
	}
	if err := db.Create(news).Error; err != nil {
		t.Fatalf("failed to create test news: %v", err)
	}
	return news
}

// CreateTestTicket creates an open support ticket for the user.
func CreateTestTicket(t *testing.T, db *gorm.DB, userID string) *models.SupportTicket {
	t.Helper()

	ticket := &models.SupportTicket{
		UserID:   userID,
		TicketID: fmt.Sprintf("TKT-T%05d", nextID()%100000),
		Subject:  "Test subject",
		Message:  "Test message",
		Status:   models.TicketStatusOpen,
	}
	if err := db.Create(ticket).Error; err != nil {
		t.Fatalf("failed to create test ticket: %v", err)
	}
	return ticket
}

package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

const (
	minUsernameLength = 4
	minPasswordLength = 8
	// bcrypt ignores nothing past 72 bytes; GenerateFromPassword rejects longer input
	maxPasswordBytes = 72
)

// RegistrationDraft is the data collected by the registration flow. The
// password is kept only as a bcrypt hash.
type RegistrationDraft struct {
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	CountryID    string `json:"country_id,omitempty"`
	CountryName  string `json:"country_name,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Registration collects a new account over a chat.
type Registration struct {
	dir  Directory
	cost int
}

// NewRegistration creates the registration machine.
func NewRegistration(dir Directory) *Registration {
	return &Registration{dir: dir, cost: bcrypt.DefaultCost}
}

// Begin starts a registration with an empty draft.
func (m *Registration) Begin() Transition[RegistrationDraft] {
	return Transition[RegistrationDraft]{
		Step:  StepCollectName,
		Reply: Reply{Text: "Let's start your registration! 📝\n\nPlease enter your username:"},
	}
}

// Step advances the registration by one message.
func (m *Registration) Step(step StepID, in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	if in.IsCancel() {
		return Transition[RegistrationDraft]{
			Reply:     Reply{Text: "Registration cancelled. You can start again anytime with /register."},
			Sensitive: SensitiveStep(step),
		}, nil
	}

	switch step {
	case StepCollectName:
		return m.collectName(in, draft)
	case StepCollectEmail:
		return m.collectEmail(in, draft)
	case StepCollectPhone:
		return collectPhone(in, draft), nil
	case StepCollectLocation:
		return m.collectLocation(in, draft)
	case StepCollectCountry:
		return m.collectCountry(in, draft)
	case StepCollectPassword:
		return m.collectPassword(in, draft)
	case StepConfirmPassword:
		return confirmPassword(in, draft), nil
	default:
		return Transition[RegistrationDraft]{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

// Conflict returns the flow to the step collecting the field that clashed with
// an existing account when the account was created. Fields collected before
// that step are kept.
func (m *Registration) Conflict(step StepID, draft RegistrationDraft) Transition[RegistrationDraft] {
	if step == StepCollectEmail {
		return at(StepCollectEmail, RegistrationDraft{Username: draft.Username},
			"This email was registered a moment ago. Please enter another email address:")
	}
	return at(StepCollectName, RegistrationDraft{},
		"This username was taken a moment ago. Please choose another one:")
}

func at(step StepID, draft RegistrationDraft, text string) Transition[RegistrationDraft] {
	return Transition[RegistrationDraft]{Step: step, Draft: draft, Reply: Reply{Text: text}}
}

func (m *Registration) collectName(in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	username := in.text()
	if utf8.RuneCountInString(username) < minUsernameLength {
		return at(StepCollectName, draft, "Username must be at least 4 characters long. Please try again:"), nil
	}
	taken, err := m.dir.UsernameTaken(username)
	if err != nil {
		return Transition[RegistrationDraft]{}, err
	}
	if taken {
		return at(StepCollectName, draft, "This username is already taken. Please choose another one:"), nil
	}

	draft.Username = username
	return at(StepCollectEmail, draft, fmt.Sprintf("Great, %s! 👍\n\nNow, please enter your email address:", username)), nil
}

func (m *Registration) collectEmail(in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	email := in.text()
	if !emailPattern.MatchString(email) {
		return at(StepCollectEmail, draft, "Please enter a valid email address:"), nil
	}
	taken, err := m.dir.EmailTaken(email)
	if err != nil {
		return Transition[RegistrationDraft]{}, err
	}
	if taken {
		return at(StepCollectEmail, draft, "This email is already registered. Please use another one:"), nil
	}

	draft.Email = email
	return at(StepCollectPhone, draft, "Great! 📧\n\nNow, please enter your phone number (include country code):"), nil
}

func collectPhone(in Input, draft RegistrationDraft) Transition[RegistrationDraft] {
	phone := in.text()
	if !phonePattern.MatchString(phone) {
		return at(StepCollectPhone, draft, "Please enter a valid phone number (10-15 digits, may include + prefix):")
	}
	draft.Phone = phone
	return at(StepCollectLocation, draft, "Good! 📱\n\nNow, please enter your city/location:")
}

func (m *Registration) collectLocation(in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	location := in.text()
	if location == "" {
		return at(StepCollectLocation, draft, "Please enter your city/location:"), nil
	}
	draft.Location = location
	return m.countryPrompt(draft, "Almost there! 🌍\n\nPlease select your country:")
}

func (m *Registration) countryPrompt(draft RegistrationDraft, text string) (Transition[RegistrationDraft], error) {
	countries, err := m.dir.Countries()
	if err != nil {
		return Transition[RegistrationDraft]{}, err
	}
	buttons := make([]Button, 0, len(countries))
	for _, c := range countries {
		buttons = append(buttons, Button{Text: c.Name, Data: c.ID})
	}
	t := at(StepCollectCountry, draft, text)
	t.Reply.Keyboard = keyboard(buttons, 2)
	return t, nil
}

// collectCountry accepts only a keyboard callback naming a known country.
func (m *Registration) collectCountry(in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	if in.Callback != "" {
		countries, err := m.dir.Countries()
		if err != nil {
			return Transition[RegistrationDraft]{}, err
		}
		for _, c := range countries {
			if c.ID == in.Callback {
				draft.CountryID = c.ID
				draft.CountryName = c.Name
				return at(StepCollectPassword, draft, fmt.Sprintf(
					"Country selected: %s 🏳️\n\nNow, please enter a secure password (at least 8 characters):", c.Name)), nil
			}
		}
	}
	return m.countryPrompt(draft, "Please select your country using the buttons below:")
}

func (m *Registration) collectPassword(in Input, draft RegistrationDraft) (Transition[RegistrationDraft], error) {
	// hashed exactly as typed so the web login accepts the same text
	password := in.Text
	if utf8.RuneCountInString(strings.TrimSpace(password)) < minPasswordLength {
		return passwordRetry(draft, "Password must be at least 8 characters long. Please try again:"), nil
	}
	if len(password) > maxPasswordBytes {
		return passwordRetry(draft, "Password must be at most 72 bytes long. Please choose a shorter one:"), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return Transition[RegistrationDraft]{}, fmt.Errorf("hashing password: %w", err)
	}
	draft.PasswordHash = string(hash)

	t := at(StepConfirmPassword, draft, "Good choice! 🔒\n\nPlease confirm your password by entering it again:")
	t.Sensitive = true
	return t, nil
}

func passwordRetry(draft RegistrationDraft, text string) Transition[RegistrationDraft] {
	draft.PasswordHash = ""
	t := at(StepCollectPassword, draft, text)
	t.Sensitive = true
	return t
}

func confirmPassword(in Input, draft RegistrationDraft) Transition[RegistrationDraft] {
	if bcrypt.CompareHashAndPassword([]byte(draft.PasswordHash), []byte(in.Text)) != nil {
		return passwordRetry(draft, "Passwords do not match. Please enter your password again:")
	}

	return Transition[RegistrationDraft]{
		Effect:    CreateAccount{Draft: draft},
		Sensitive: true,
		Reply: Reply{Text: fmt.Sprintf("🎉 Congratulations, %s! 🎉\n\n"+
			"Your registration is complete! You can now:\n\n"+
			"1. Log in to the JBC website with your email and password\n"+
			"2. Use the JBC News Bot to receive personalized news\n"+
			"3. Contact support through the Support Bot if needed\n\n"+
			"Thank you for joining JARAR BROADCASTING CORPORATION!", draft.Username)},
	}
}

package conversation

import (
	"fmt"
	"strings"
)

// ArticleDraft is the data collected by the authoring flow.
type ArticleDraft struct {
	Title        string `json:"title,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Content      string `json:"content,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// Authoring lets staff write and publish an article over a chat.
type Authoring struct {
	dir Directory
}

// NewAuthoring creates the authoring machine.
func NewAuthoring(dir Directory) *Authoring {
	return &Authoring{dir: dir}
}

// Begin starts a new article.
func (m *Authoring) Begin() Transition[ArticleDraft] {
	return Transition[ArticleDraft]{
		Step:  StepTitle,
		Reply: Reply{Text: "Let's write a new article! ✍️\n\nPlease enter the headline:"},
	}
}

// Step advances the authoring flow by one message.
func (m *Authoring) Step(step StepID, in Input, draft ArticleDraft) (Transition[ArticleDraft], error) {
	if in.IsCancel() {
		return Transition[ArticleDraft]{Reply: Reply{Text: "Article cancelled. The draft was discarded."}}, nil
	}

	text := in.text()
	switch step {
	case StepTitle:
		if text == "" {
			return article(step, draft, "Please enter the headline:"), nil
		}
		draft.Title = text
		return article(StepSummary, draft, "Now enter a short summary:"), nil
	case StepSummary:
		if text == "" {
			return article(step, draft, "Please enter a short summary:"), nil
		}
		draft.Summary = text
		return article(StepContent, draft, "Now send the full article text:"), nil
	case StepContent:
		if text == "" {
			return article(step, draft, "Please send the full article text:"), nil
		}
		draft.Content = text
		return m.categoryPrompt(draft, "Choose a category:")
	case StepCategory:
		return m.chooseCategory(in, draft)
	case StepConfirm:
		return confirmArticle(text, draft), nil
	default:
		return Transition[ArticleDraft]{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

func article(step StepID, draft ArticleDraft, text string) Transition[ArticleDraft] {
	return Transition[ArticleDraft]{Step: step, Draft: draft, Reply: Reply{Text: text}}
}

func (m *Authoring) categoryPrompt(draft ArticleDraft, text string) (Transition[ArticleDraft], error) {
	categories, err := m.dir.Categories()
	if err != nil {
		return Transition[ArticleDraft]{}, err
	}
	buttons := make([]Button, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, Button{Text: c.Name, Data: c.ID})
	}
	t := article(StepCategory, draft, text)
	t.Reply.Keyboard = keyboard(buttons, 2)
	return t, nil
}

// chooseCategory accepts a keyboard callback with a category id or the exact category name.
func (m *Authoring) chooseCategory(in Input, draft ArticleDraft) (Transition[ArticleDraft], error) {
	categories, err := m.dir.Categories()
	if err != nil {
		return Transition[ArticleDraft]{}, err
	}
	text := in.text()
	for _, c := range categories {
		if (in.Callback != "" && c.ID == in.Callback) || (in.Callback == "" && text != "" && c.Name == text) {
			draft.CategoryID = c.ID
			draft.CategoryName = c.Name
			return article(StepConfirm, draft, fmt.Sprintf(
				"Title: %s\nCategory: %s\nSummary: %s\n\nConfirm publication? (yes/no)",
				draft.Title, draft.CategoryName, draft.Summary)), nil
		}
	}
	return m.categoryPrompt(draft, "Please choose one of the listed categories:")
}

func confirmArticle(text string, draft ArticleDraft) Transition[ArticleDraft] {
	switch strings.ToLower(text) {
	case "yes", "y":
		return Transition[ArticleDraft]{
			Effect: PublishArticle{Draft: draft},
			Reply:  Reply{Text: fmt.Sprintf("✅ Article published: %s", draft.Title)},
		}
	default:
		return Transition[ArticleDraft]{Reply: Reply{Text: "Article discarded."}}
	}
}

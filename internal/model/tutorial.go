package model

// Tutorial is the stored record. ID is assigned by the store on first save.
type Tutorial struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

// TutorialInput carries the caller supplied fields for create and update.
type TutorialInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

// NewTutorial creates an unsaved, unpublished Tutorial.
func NewTutorial(title, description string) Tutorial {
	return Tutorial{
		Title:       title,
		Description: description,
		Published:   false,
	}
}

// IsNew reports whether the store has not assigned an id yet.
func (t Tutorial) IsNew() bool {
	return t.ID == 0
}

// Apply overwrites every mutable field from in. The id is left untouched.
func (t *Tutorial) Apply(in TutorialInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.Published = in.Published
}

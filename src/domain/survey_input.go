package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"feedbackflow/src/domain/entities"
)

const (
	maxSurveyQuestions  = 50
	maxBatchDelete      = 100
	DefaultPrimaryColor = "#2563eb"
	DefaultSecondColor  = "#1e40af"
)

var brandColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type SurveyInput struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Questions   []entities.SurveyQuestion `json:"questions"`
	Branding    entities.SurveyBranding   `json:"branding"`
	IsActive    *bool                     `json:"is_active,omitempty"`
	AssignedTo  entities.SurveyAssignment `json:"assigned_to"`
}

type SurveyPatchInput struct {
	Title       *string                    `json:"title,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Questions   *[]entities.SurveyQuestion `json:"questions,omitempty"`
	Branding    *entities.SurveyBranding   `json:"branding,omitempty"`
	IsActive    *bool                      `json:"is_active,omitempty"`
	AssignedTo  *entities.SurveyAssignment `json:"assigned_to,omitempty"`
}

type SurveyDraft struct {
	Title       string
	Description string
	Questions   []entities.SurveyQuestion
	Branding    entities.SurveyBranding
	IsActive    bool
	AssignedTo  entities.SurveyAssignment
}

type SurveyPatch struct {
	Title       *string
	Description *string
	Questions   *[]entities.SurveyQuestion
	Branding    *entities.SurveyBranding
	IsActive    *bool
	AssignedTo  *entities.SurveyAssignment
}

// SurveyIDsInput é o corpo da exclusão em lote.
type SurveyIDsInput struct {
	IDs []string `json:"ids"`
}

// ParseSurveyDraft valida a pesquisa. Uma pesquisa nova nasce ativa, salvo
// is_active=false explícito.
func ParseSurveyDraft(in SurveyInput) (SurveyDraft, error) {
	v := &ValidationError{}
	draft := SurveyDraft{
		Title:       requireLength(v, "title", in.Title, 3, 120, "survey title must be at least 3 characters"),
		Description: requireLength(v, "description", in.Description, 0, 1000, ""),
		Questions:   parseQuestions(v, in.Questions),
		Branding:    parseBranding(v, in.Branding),
		IsActive:    in.IsActive == nil || *in.IsActive,
		AssignedTo:  parseAssignment(in.AssignedTo),
	}
	return draft, v.orNil()
}

func ParseSurveyPatch(in SurveyPatchInput) (SurveyPatch, error) {
	v := &ValidationError{}
	patch := SurveyPatch{
		Title:       optionalLength(v, "title", in.Title, 3, 120, "survey title must be at least 3 characters"),
		Description: optionalLength(v, "description", in.Description, 0, 1000, ""),
		IsActive:    in.IsActive,
	}
	if in.Questions != nil {
		questions := parseQuestions(v, *in.Questions)
		patch.Questions = &questions
	}
	if in.Branding != nil {
		branding := parseBranding(v, *in.Branding)
		patch.Branding = &branding
	}
	if in.AssignedTo != nil {
		assignment := parseAssignment(*in.AssignedTo)
		patch.AssignedTo = &assignment
	}

	if patch == (SurveyPatch{}) {
		v.add("patch", "at least one field must be provided")
	}
	return patch, v.orNil()
}

// ParseSurveyIDs remove ids vazios e repetidos, preservando a ordem.
func ParseSurveyIDs(in SurveyIDsInput) ([]string, error) {
	v := &ValidationError{}
	ids := uniqueTrimmed(in.IDs)
	switch {
	case len(ids) == 0:
		v.add("ids", "at least one id is required")
	case len(ids) > maxBatchDelete:
		v.add("ids", fmt.Sprintf("cannot delete more than %d surveys at once", maxBatchDelete))
	}
	return ids, v.orNil()
}

func parseQuestions(v *ValidationError, questions []entities.SurveyQuestion) []entities.SurveyQuestion {
	if len(questions) > maxSurveyQuestions {
		v.add("questions", fmt.Sprintf("a survey cannot have more than %d questions", maxSurveyQuestions))
		return questions
	}

	out := make([]entities.SurveyQuestion, 0, len(questions))
	seen := make(map[string]bool, len(questions))
	for i, question := range questions {
		field := fmt.Sprintf("questions[%d]", i)

		question.ID = strings.TrimSpace(question.ID)
		switch {
		case question.ID == "":
			v.add(field+".id", "question id is required")
		case seen[question.ID]:
			v.add(field+".id", "question ids must be unique")
		}

		question.Text = requireLength(v, field+".text", question.Text, 1, 500, "question text is required")

		switch question.Type {
		case entities.QuestionMultipleChoice:
			question.Options = uniqueTrimmed(question.Options)
			if len(question.Options) < 2 {
				v.add(field+".options", "multiple choice questions need at least 2 options")
			}
		case entities.QuestionRating, entities.QuestionText:
			question.Options = nil
		default:
			v.add(field+".type", "type must be one of rating, text, multipleChoice")
		}

		if logic := question.ConditionalLogic; logic != nil {
			logic.DependsOn = strings.TrimSpace(logic.DependsOn)
			if !seen[logic.DependsOn] {
				v.add(field+".conditional_logic", "must depend on an earlier question")
			}
		}

		if question.ID != "" {
			seen[question.ID] = true
		}
		out = append(out, question)
	}
	return out
}

func parseBranding(v *ValidationError, branding entities.SurveyBranding) entities.SurveyBranding {
	branding.Logo = strings.TrimSpace(branding.Logo)
	if len(branding.Logo) > 2048 {
		v.add("branding.logo", "logo url cannot exceed 2048 characters")
	}

	if branding.PrimaryColor == "" {
		branding.PrimaryColor = DefaultPrimaryColor
	} else if !brandColor.MatchString(branding.PrimaryColor) {
		v.add("branding.primary_color", "primary color must be a hex color such as #2563eb")
	}
	if branding.SecondaryColor == "" {
		branding.SecondaryColor = DefaultSecondColor
	} else if !brandColor.MatchString(branding.SecondaryColor) {
		v.add("branding.secondary_color", "secondary color must be a hex color such as #1e40af")
	}
	return branding
}

func parseAssignment(assignment entities.SurveyAssignment) entities.SurveyAssignment {
	return entities.SurveyAssignment{
		Groups:    uniqueTrimmed(assignment.Groups),
		Locations: uniqueTrimmed(assignment.Locations),
		Users:     uniqueTrimmed(assignment.Users),
	}
}

func uniqueTrimmed(values []string) []string {
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || slices.Contains(out, value) {
			continue
		}
		out = append(out, value)
	}
	return out
}

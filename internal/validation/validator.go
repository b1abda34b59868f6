package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hindinewshub/news-api/internal/models"
	"golang.org/x/text/unicode/norm"
)

var (
	slugRegex       = regexp.MustCompile(`^[\p{Ll}\p{Lo}\p{M}\p{N}_]+(?:-[\p{Ll}\p{Lo}\p{M}\p{N}_]+)*$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9_\x{0900}-\x{0963}\x{0966}-\x{096F}\x{0971}-\x{097F}-]`)
	dashRunRegex    = regexp.MustCompile(`-{2,}`)
)

// DefaultWordsPerMinute is the reading speed used for read-time estimates
const DefaultWordsPerMinute = 200

// ValidationError represents a single validation error
type ValidationError struct {
	Line    int         `json:"line,omitempty"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator provides validation methods
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := models.ResolveCategory(fl.Field().String())
		return ok
	})
	return &Validator{validate: v}
}

// ValidateArticle validates an article create request
func (v *Validator) ValidateArticle(in *models.ArticleInput) []ValidationError {
	var errs []ValidationError
	if err := v.validate.Struct(in); err != nil {
		errs = append(errs, translate(err)...)
	}
	if strings.TrimSpace(in.Title) == "" && in.Title != "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	}
	if in.Slug != "" && !slugRegex.MatchString(in.Slug) {
		errs = append(errs, ValidationError{Field: "slug", Message: "slug must be lowercase words joined by hyphens", Value: in.Slug})
	}
	return errs
}

// ValidatePatch validates every field present in a partial article update
func (v *Validator) ValidatePatch(p *models.ArticlePatch) []ValidationError {
	var errs []ValidationError
	check := func(field string, value interface{}, tag string) {
		if err := v.validate.Var(value, tag); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: messageFor(field, tagOf(err)), Value: value})
		}
	}

	if p.Title.Set {
		check("title", strings.TrimSpace(p.Title.Value), "required,max=300")
	}
	if p.Subtitle.Set && p.Subtitle.Value != nil {
		check("subtitle", *p.Subtitle.Value, "max=500")
	}
	if p.Slug.Set && !slugRegex.MatchString(p.Slug.Value) {
		errs = append(errs, ValidationError{Field: "slug", Message: "slug must be lowercase words joined by hyphens", Value: p.Slug.Value})
	}
	if p.Content.Set {
		check("content", strings.TrimSpace(p.Content.Value), "required")
	}
	if p.Excerpt.Set && p.Excerpt.Value != nil {
		check("excerpt", *p.Excerpt.Value, "max=1000")
	}
	if p.Category.Set {
		check("category", p.Category.Value, "required,category")
	}
	if p.Region.Set && p.Region.Value != nil {
		check("region", *p.Region.Value, "max=100")
	}
	if p.ImageURL.Set && p.ImageURL.Value != nil {
		check("imageUrl", *p.ImageURL.Value, "url")
	}
	if p.Status.Set {
		check("status", string(p.Status.Value), "required,oneof=draft scheduled published")
	}
	if p.ReadTime.Set {
		check("readTime", p.ReadTime.Value, "min=1,max=600")
	}
	return errs
}

// ValidateComment validates a comment body
func (v *Validator) ValidateComment(content string) []ValidationError {
	var errs []ValidationError

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
		return errs
	}

	wordCount := len(strings.Fields(trimmed))
	if wordCount > models.MaxCommentWords {
		errs = append(errs, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
		})
	}
	return errs
}

// ValidateReaction validates a reaction toggle request
func (v *Validator) ValidateReaction(in *models.ReactionInput) []ValidationError {
	if err := v.validate.Struct(in); err != nil {
		return translate(err)
	}
	return nil
}

// ValidateBookmark validates a bookmark toggle request
func (v *Validator) ValidateBookmark(in *models.BookmarkInput) []ValidationError {
	if err := v.validate.Struct(in); err != nil {
		return translate(err)
	}
	return nil
}

// Normalize trims text and brings it to Unicode NFC so that composed and decomposed
// Devanagari compare equal.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Slugify derives a URL slug from a title. Devanagari letters are kept as-is.
func Slugify(title string) string {
	s := strings.ToLower(Normalize(title))
	s = whitespaceRegex.ReplaceAllString(s, "-")
	s = slugStripRegex.ReplaceAllString(s, "")
	s = dashRunRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ReadTime estimates minutes to read content, never less than one
func ReadTime(content string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / float64(wordsPerMinute)))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// translate converts validator errors into field errors keyed by JSON name
func translate(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe.Field(), fe.Tag()),
			Value:   displayValue(fe.Value()),
		})
	}
	return out
}

func tagOf(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}

func messageFor(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "max":
		return field + " is too long"
	case "min":
		return field + " is too small"
	case "url":
		return field + " must be a valid URL"
	case "category":
		return "unknown category"
	case "oneof":
		switch field {
		case "status":
			return "invalid status, must be one of: draft, scheduled, published"
		case "type":
			return "invalid type, must be one of: like, love, fire"
		}
		return field + " has an invalid value"
	default:
		return field + " is invalid"
	}
}

func displayValue(v interface{}) interface{} {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}
